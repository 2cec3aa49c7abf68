//go:build linux

// Package osutils provides small OS state queries for the bridge.
package osutils

import (
	"os"
	"path/filepath"
	"strings"
)

// Linux exposes keyboard lock LEDs under /sys/class/leds.

func capsLockLEDs() []string {
	matches, err := filepath.Glob("/sys/class/leds/*::capslock/brightness")
	if err != nil {
		return nil
	}
	return matches
}

// CapsLockSupported reports whether a Caps Lock LED is visible in sysfs.
func CapsLockSupported() bool {
	return len(capsLockLEDs()) > 0
}

// CapsLockOn reports whether any keyboard's Caps Lock LED is lit.
func CapsLockOn() bool {
	for _, path := range capsLockLEDs() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) != "0" {
			return true
		}
	}
	return false
}
