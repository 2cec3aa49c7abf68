// Package input provides cross-platform keyboard event injection.
package input

// Key identifies a keyboard key. Windows virtual-key codes are the
// canonical representation; platform injectors translate to native codes
// (evdev codes on Linux, CGKeyCodes on macOS).
type Key uint16

// Actuator is the abstract press/release primitive driven by the engine.
// Implementations are fire-and-forget: a returned error means the OS
// refused the injection, and callers are free to ignore it.
type Actuator interface {
	Press(k Key) error
	Release(k Key) error
}
