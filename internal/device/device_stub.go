//go:build !linux

package device

import (
	"fmt"
)

// Stub reader for platforms without raw HID access wired up.

// Discover returns no devices on unsupported platforms.
func Discover() ([]string, error) {
	return nil, nil
}

// Open reports that device reading is unavailable on this platform.
func Open(path string) (Reader, error) {
	return nil, fmt.Errorf("device reading not supported on this platform")
}
