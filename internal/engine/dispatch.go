package engine

import (
	"time"

	"smbridge/internal/input"
)

// defaultSettle is how long a tapped key stays down between press and
// release.
const defaultSettle = 5 * time.Millisecond

// Dispatcher fires short key taps on rising button edges. Each button
// index maps to an ordered key sequence: a single key is tapped directly,
// while a multi-key sequence is treated as a modifier combo (pressed in
// order, released in reverse so the modifier outlasts the base key).
type Dispatcher struct {
	act      input.Actuator
	mappings map[int][]input.Key
	settle   time.Duration
	prev     []bool
}

// NewDispatcher creates a dispatcher over the given button-index mappings.
// Indices with no mapping are ignored.
func NewDispatcher(act input.Actuator, mappings map[int][]input.Key) *Dispatcher {
	return &Dispatcher{
		act:      act,
		mappings: mappings,
		settle:   defaultSettle,
	}
}

// SetSettleDelay overrides the press settle delay. Tests use zero.
func (d *Dispatcher) SetSettleDelay(settle time.Duration) {
	d.settle = settle
}

// Dispatch compares the sampled button vector against the previous poll
// and taps the mapped keys of every button that transitioned to pressed.
// A vector of a different length than last poll resets the stored state,
// so indices already down across the length change fire once.
func (d *Dispatcher) Dispatch(buttons []bool) {
	if len(buttons) != len(d.prev) {
		d.prev = make([]bool, len(buttons))
	}
	for i, down := range buttons {
		if down && !d.prev[i] {
			d.tap(i)
		}
		d.prev[i] = down
	}
}

func (d *Dispatcher) tap(idx int) {
	keys := d.mappings[idx]
	if len(keys) == 0 {
		return
	}
	for _, k := range keys {
		_ = d.act.Press(k)
	}
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		_ = d.act.Release(keys[i])
	}
}
