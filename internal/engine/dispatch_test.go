package engine

import (
	"testing"

	"smbridge/internal/input"
)

const (
	keyShift = input.Key(0x10)
	keySpace = input.Key(0x20)
	keyB     = input.Key(0x42)
)

func newTestDispatcher(act *fakeActuator) *Dispatcher {
	d := NewDispatcher(act, map[int][]input.Key{
		0: {keyB},
		1: {keyShift, keySpace},
	})
	d.SetSettleDelay(0)
	return d
}

// TestRisingEdgesFireExactlyOnce verifies each false->true transition
// fires one tap and nothing fires on release or while held.
func TestRisingEdgesFireExactlyOnce(t *testing.T) {
	act := &fakeActuator{}
	d := newTestDispatcher(act)

	d.Dispatch([]bool{false, false})
	if len(act.events) != 0 {
		t.Fatalf("Expected no taps on all-false vector, got %v", act.events)
	}

	d.Dispatch([]bool{true, false})
	if presses, _ := act.counts(); presses != 1 {
		t.Errorf("Expected one tap for index 0, got %v", act.events)
	}

	d.Dispatch([]bool{true, true})
	if presses, _ := act.counts(); presses != 3 {
		t.Errorf("Expected combo tap for index 1 only, got %v", act.events)
	}

	before := len(act.events)
	d.Dispatch([]bool{false, false})
	if len(act.events) != before {
		t.Errorf("Expected no taps on release, got %v", act.events[before:])
	}
}

// TestComboPressReverseReleaseOrder verifies combos press in order and
// release in reverse so the modifier outlasts the base key.
func TestComboPressReverseReleaseOrder(t *testing.T) {
	act := &fakeActuator{}
	d := newTestDispatcher(act)

	d.Dispatch([]bool{false, true})

	want := []string{"press:16", "press:32", "release:32", "release:16"}
	if len(act.events) != len(want) {
		t.Fatalf("Expected %v, got %v", want, act.events)
	}
	for i, ev := range want {
		if act.events[i] != ev {
			t.Errorf("Event %d: expected %s, got %s", i, ev, act.events[i])
		}
	}
}

// TestHeldButtonDoesNotRepeat verifies a button held across many polls
// taps only once.
func TestHeldButtonDoesNotRepeat(t *testing.T) {
	act := &fakeActuator{}
	d := newTestDispatcher(act)

	for i := 0; i < 50; i++ {
		d.Dispatch([]bool{true, false})
	}

	if presses, _ := act.counts(); presses != 1 {
		t.Errorf("Expected single tap for held button, got %v", act.events)
	}
}

// TestLengthChangeResetsState verifies a vector length change treats all
// previous state as released, so buttons down across the change fire
// fresh edges.
func TestLengthChangeResetsState(t *testing.T) {
	act := &fakeActuator{}
	d := newTestDispatcher(act)

	d.Dispatch([]bool{true})
	if presses, _ := act.counts(); presses != 1 {
		t.Fatalf("Expected tap on initial edge, got %v", act.events)
	}

	// Same button still down but the vector grew: state resets and both
	// true indices fire.
	d.Dispatch([]bool{true, true, false})
	if presses, _ := act.counts(); presses != 4 {
		t.Errorf("Expected edges for indices 0 and 1 after resize, got %v", act.events)
	}
}

// TestUnmappedIndexIgnored verifies buttons with no configured mapping
// are silent.
func TestUnmappedIndexIgnored(t *testing.T) {
	act := &fakeActuator{}
	d := newTestDispatcher(act)

	d.Dispatch([]bool{false, false, true})

	if len(act.events) != 0 {
		t.Errorf("Expected no taps for unmapped index, got %v", act.events)
	}
}
