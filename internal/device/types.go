// Package device reads 6-DOF motion and button state from a 3Dconnexion
// SpaceMouse over raw HID.
package device

// NumButtons is the button count of the supported Universal Receiver
// report format.
const NumButtons = 15

// State is one normalized device sample. Axes are in [-1, 1]; Buttons
// holds the current pressed state of each device button.
type State struct {
	X     float64
	Y     float64
	Z     float64
	Roll  float64
	Pitch float64
	Yaw   float64

	Buttons []bool
}

// Reader produces device samples for the poll loop. Poll returns nil
// with no error when no new report arrived this tick; that is a normal,
// frequent condition.
type Reader interface {
	Poll() (*State, error)
	Close() error
}
