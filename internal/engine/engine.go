package engine

import (
	"math"
	"time"

	"smbridge/internal/input"
)

// Mode selects how a bound axis drives its key.
type Mode string

const (
	// ModePulse emits short press/release pairs whose rate encodes the
	// axis magnitude.
	ModePulse Mode = "pulse"

	// ModeHold keeps the key down for as long as the magnitude exceeds
	// the deadzone.
	ModeHold Mode = "hold"
)

// minSpan floors the pulse-band width so a misconfigured hold threshold
// at or below the deadzone saturates the rate at MaxHz instead of
// dividing by zero.
const minSpan = 1e-6

// Tuning holds the conversion parameters shared by all axes of one
// Engine instance.
type Tuning struct {
	// PressDuration is the on-time of a single pulse.
	PressDuration time.Duration

	// MinHz and MaxHz bound the pulse rate across the band between
	// Deadzone and HoldThreshold.
	MinHz float64
	MaxHz float64

	// Deadzone is the magnitude below which an axis is at rest.
	Deadzone float64

	// HoldThreshold is the magnitude at or above which a pulsing axis
	// switches to a continuous hold. Must exceed Deadzone.
	HoldThreshold float64

	// EMAAlpha is the smoothing coefficient for the axis filter.
	EMAAlpha float64
}

// boundAxis is the runtime state of one logical axis direction.
type boundAxis struct {
	key            input.Key
	mode           Mode
	pressed        bool
	held           bool
	lastPulseStart time.Time
	releaseDue     time.Time
}

// AxisState is a read-only snapshot of a bound axis, for status reporting.
type AxisState struct {
	Key     input.Key `json:"key"`
	Mode    Mode      `json:"mode"`
	Pressed bool      `json:"pressed"`
	Held    bool      `json:"held"`
}

// Engine turns smoothed axis magnitudes into pulsed or held key output.
//
// Below the deadzone a key is released. Between the deadzone and the hold
// threshold it pulses at a rate proportional to the magnitude. At or above
// the hold threshold it is held continuously, which keeps fast motion
// smooth instead of rapid-fire pulsing.
//
// The engine is single-threaded by design: one poll loop owns it and calls
// Update once per axis per tick. Actuator failures are swallowed and the
// internal bookkeeping assumes the press or release took effect, since the
// actuator offers no feedback channel.
type Engine struct {
	act    input.Actuator
	tuning Tuning
	axes   map[string]*boundAxis
	filter *AxisFilter
}

// New creates an Engine driving the given actuator with the given tuning.
func New(act input.Actuator, tuning Tuning) *Engine {
	return &Engine{
		act:    act,
		tuning: tuning,
		axes:   make(map[string]*boundAxis),
		filter: NewAxisFilter(tuning.EMAAlpha),
	}
}

// Bind registers a logical axis direction under name, driving key in the
// given mode. Unknown modes fall back to ModePulse. Re-binding an existing
// name resets its runtime state.
func (e *Engine) Bind(name string, key input.Key, mode Mode) {
	if mode != ModePulse && mode != ModeHold {
		mode = ModePulse
	}
	e.axes[name] = &boundAxis{key: key, mode: mode}
	e.filter.Reset(name)
}

// SetMode switches the output mode of a bound axis. The caller must force
// a release right after switching a group of axes so no stale press
// survives the mode change; SetMode itself does not touch the key.
func (e *Engine) SetMode(name string, mode Mode) {
	st, ok := e.axes[name]
	if !ok {
		return
	}
	if mode != ModePulse && mode != ModeHold {
		mode = ModePulse
	}
	st.mode = mode
}

// ForceRelease unconditionally clears the pressed/held state of name,
// issuing a release if either was set. Used at shutdown and around mode
// changes.
func (e *Engine) ForceRelease(name string) {
	st, ok := e.axes[name]
	if !ok {
		return
	}
	e.ensureReleased(st)
}

// ForceReleaseAll force-releases every bound axis.
func (e *Engine) ForceReleaseAll() {
	for _, st := range e.axes {
		e.ensureReleased(st)
	}
}

// Snapshot returns the current state of all bound axes keyed by name.
func (e *Engine) Snapshot() map[string]AxisState {
	out := make(map[string]AxisState, len(e.axes))
	for name, st := range e.axes {
		out[name] = AxisState{
			Key:     st.key,
			Mode:    st.mode,
			Pressed: st.pressed,
			Held:    st.held,
		}
	}
	return out
}

// Update feeds one raw sample for the named axis at time now. Unbound
// names are ignored so callers can update axes unconditionally.
func (e *Engine) Update(name string, rawValue float64, now time.Time) {
	st, ok := e.axes[name]
	if !ok {
		return
	}

	mag := math.Abs(e.filter.Filter(name, rawValue))

	if mag <= e.tuning.Deadzone {
		// At rest: leave a held key, or finish an in-flight pulse that
		// ran its course.
		if st.held {
			e.ensureReleased(st)
		} else if st.pressed && !now.Before(st.releaseDue) {
			e.release(st)
		}
		return
	}

	if st.mode == ModeHold {
		if !st.held {
			e.press(st)
			st.held = true
		}
		return
	}

	// Pulse mode. Strong input is held rather than pulsed.
	if mag >= e.tuning.HoldThreshold {
		if !st.held {
			e.press(st)
			st.held = true
		}
		return
	}

	// Back in the pulsing band: drop out of a high-magnitude hold first.
	if st.held {
		e.release(st)
		st.held = false
	}

	// Map [deadzone, holdThreshold] linearly onto [minHz, maxHz].
	span := e.tuning.HoldThreshold - e.tuning.Deadzone
	if span < minSpan {
		span = minSpan
	}
	unit := clamp((mag-e.tuning.Deadzone)/span, 0.0, 1.0)
	freq := e.tuning.MinHz + unit*(e.tuning.MaxHz-e.tuning.MinHz)
	if freq < minSpan {
		freq = minSpan
	}
	interval := time.Duration(float64(time.Second) / freq)

	if now.Sub(st.lastPulseStart) >= interval {
		e.press(st)
		st.releaseDue = now.Add(e.tuning.PressDuration)
		st.lastPulseStart = now
	}

	// End the pulse once its on-time elapsed, independent of whether a
	// new one started this tick. Pulse width stays bounded as long as the
	// polling interval is no longer than the press duration.
	if st.pressed && !now.Before(st.releaseDue) {
		e.release(st)
	}
}

func (e *Engine) press(st *boundAxis) {
	if st.pressed {
		return
	}
	_ = e.act.Press(st.key)
	st.pressed = true
}

func (e *Engine) release(st *boundAxis) {
	if !st.pressed {
		return
	}
	_ = e.act.Release(st.key)
	st.pressed = false
}

func (e *Engine) ensureReleased(st *boundAxis) {
	if st.pressed || st.held {
		_ = e.act.Release(st.key)
	}
	st.pressed = false
	st.held = false
	st.releaseDue = time.Time{}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
