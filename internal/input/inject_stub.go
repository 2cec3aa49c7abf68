//go:build !windows && !linux && !darwin

package input

import (
	"fmt"
)

// Stub implementation for unsupported platforms.

// Injector is a stub key injector.
type Injector struct{}

// NewInjector creates a new stub injector.
func NewInjector() *Injector {
	return &Injector{}
}

// Press injects a key-down event (stub).
func (i *Injector) Press(k Key) error {
	return fmt.Errorf("key injection not supported on this platform")
}

// Release injects a key-up event (stub).
func (i *Injector) Release(k Key) error {
	return fmt.Errorf("key injection not supported on this platform")
}

// Close releases injector resources (stub).
func (i *Injector) Close() error {
	return nil
}
