//go:build !windows && !linux

// Package osutils provides small OS state queries for the bridge.
package osutils

// CapsLockSupported reports that the toggle state cannot be queried on
// this platform; the mode falls back to the configured default.
func CapsLockSupported() bool {
	return false
}

// CapsLockOn always reports false on unsupported platforms.
func CapsLockOn() bool {
	return false
}
