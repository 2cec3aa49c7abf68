//go:build !windows && !linux && !darwin

// Package autostart provides auto-start-on-login functionality.
package autostart

import (
	"fmt"
	"runtime"
)

// Enable enables auto-start on login
func Enable() error {
	return fmt.Errorf("auto-start not supported on %s", runtime.GOOS)
}

// Disable disables auto-start on login
func Disable() error {
	return fmt.Errorf("auto-start not supported on %s", runtime.GOOS)
}

// IsEnabled checks if auto-start is enabled
func IsEnabled() bool {
	return false
}
