package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"smbridge/internal/input"
)

// fakeActuator records press/release calls in order.
type fakeActuator struct {
	events []string
	fail   bool
}

func (f *fakeActuator) Press(k input.Key) error {
	f.events = append(f.events, fmt.Sprintf("press:%d", k))
	if f.fail {
		return errors.New("injection refused")
	}
	return nil
}

func (f *fakeActuator) Release(k input.Key) error {
	f.events = append(f.events, fmt.Sprintf("release:%d", k))
	if f.fail {
		return errors.New("injection refused")
	}
	return nil
}

func (f *fakeActuator) counts() (presses, releases int) {
	for _, ev := range f.events {
		if ev[0] == 'p' {
			presses++
		} else {
			releases++
		}
	}
	return
}

// testTuning disables smoothing so magnitudes are exact per tick.
func testTuning() Tuning {
	return Tuning{
		PressDuration: 20 * time.Millisecond,
		MinHz:         10.0,
		MaxHz:         20.0,
		Deadzone:      0.1,
		HoldThreshold: 0.5,
		EMAAlpha:      1.0,
	}
}

// TestDeadzoneNeverPresses verifies samples below the deadzone produce
// no actuator calls at all.
func TestDeadzoneNeverPresses(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("move_left", input.Key(0x41), ModePulse)

	now := time.Unix(0, 0)
	for i := 0; i < 200; i++ {
		e.Update("move_left", 0.05, now)
		now = now.Add(time.Millisecond)
	}

	if len(act.events) != 0 {
		t.Errorf("Expected no actuator calls below deadzone, got %v", act.events)
	}
}

// TestDeadzoneReleasesHeldKeyExactlyOnce verifies a held key gets exactly
// one release when the axis returns to rest, then stays silent.
func TestDeadzoneReleasesHeldKeyExactlyOnce(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("rotate_left", input.Key(0x25), ModeHold)

	now := time.Unix(0, 0)
	e.Update("rotate_left", 0.8, now)
	if p, _ := act.counts(); p != 1 {
		t.Fatalf("Expected one press entering hold, got %d", p)
	}

	for i := 0; i < 100; i++ {
		now = now.Add(time.Millisecond)
		e.Update("rotate_left", 0.0, now)
	}

	presses, releases := act.counts()
	if presses != 1 || releases != 1 {
		t.Errorf("Expected 1 press / 1 release, got %d / %d", presses, releases)
	}
}

// TestHoldModePressesOnce verifies hold mode issues a single press while
// the magnitude stays above the deadzone.
func TestHoldModePressesOnce(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("pitch_up", input.Key(0x26), ModeHold)

	now := time.Unix(0, 0)
	for i := 0; i < 500; i++ {
		e.Update("pitch_up", 0.3, now)
		now = now.Add(time.Millisecond)
	}

	presses, releases := act.counts()
	if presses != 1 {
		t.Errorf("Expected exactly 1 press in hold mode, got %d", presses)
	}
	if releases != 0 {
		t.Errorf("Expected no releases while held, got %d", releases)
	}

	st := e.Snapshot()["pitch_up"]
	if !st.Held || !st.Pressed {
		t.Errorf("Expected pressed and held state, got %+v", st)
	}
}

// TestHighMagnitudeOverrideHolds verifies a pulsing axis switches to a
// continuous hold at or above the hold threshold, and back to pulsing
// below it.
func TestHighMagnitudeOverrideHolds(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("move_right", input.Key(0x44), ModePulse)

	now := time.Unix(0, 0)
	for i := 0; i < 100; i++ {
		e.Update("move_right", 0.9, now)
		now = now.Add(time.Millisecond)
	}

	presses, releases := act.counts()
	if presses != 1 || releases != 0 {
		t.Fatalf("Expected single held press at high magnitude, got %d presses / %d releases", presses, releases)
	}
	if st := e.Snapshot()["move_right"]; !st.Held {
		t.Fatalf("Expected held state at high magnitude, got %+v", st)
	}

	// Dropping into the pulse band must release the hold and resume pulsing.
	e.Update("move_right", 0.3, now)
	if st := e.Snapshot()["move_right"]; st.Held {
		t.Errorf("Expected hold cleared in pulse band, got %+v", st)
	}
	if _, releases := act.counts(); releases != 1 {
		t.Errorf("Expected one release leaving the hold band, got %d", releases)
	}
}

// TestPulseIntervalMatchesMagnitude verifies the inter-press interval in
// the linear band matches the magnitude-mapped frequency.
func TestPulseIntervalMatchesMagnitude(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("move_left", input.Key(0x41), ModePulse)

	// Magnitude 0.3 is halfway through [0.1, 0.5] -> 15 Hz -> ~66.7ms.
	var pressTimes []time.Time
	now := time.Unix(0, 0)
	for i := 0; i < 1000; i++ {
		before, _ := act.counts()
		e.Update("move_left", 0.3, now)
		after, _ := act.counts()
		if after > before {
			pressTimes = append(pressTimes, now)
		}
		now = now.Add(time.Millisecond)
	}

	if len(pressTimes) < 10 {
		t.Fatalf("Expected ~15 pulses over one second, got %d", len(pressTimes))
	}
	expected := time.Second / 15
	for i := 1; i < len(pressTimes); i++ {
		delta := pressTimes[i].Sub(pressTimes[i-1])
		diff := delta - expected
		if diff < 0 {
			diff = -diff
		}
		// One polling tick of jitter is allowed.
		if diff > 2*time.Millisecond {
			t.Errorf("Pulse %d interval %v, expected ~%v", i, delta, expected)
		}
	}
}

// TestEveryPressHasMatchingRelease verifies presses and releases stay
// paired per axis with never more than one outstanding press.
func TestEveryPressHasMatchingRelease(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("zoom_in", input.Key(0x21), ModePulse)

	now := time.Unix(0, 0)
	for i := 0; i < 800; i++ {
		e.Update("zoom_in", 0.25, now)
		now = now.Add(time.Millisecond)
	}
	// Let the axis settle so the final pulse completes.
	for i := 0; i < 100; i++ {
		e.Update("zoom_in", 0.0, now)
		now = now.Add(time.Millisecond)
	}

	outstanding := 0
	for _, ev := range act.events {
		if ev[0] == 'p' {
			outstanding++
		} else {
			outstanding--
		}
		if outstanding < 0 {
			t.Fatalf("Release without matching press in %v", act.events)
		}
		if outstanding > 1 {
			t.Fatalf("More than one outstanding press in %v", act.events)
		}
	}
	if outstanding != 0 {
		t.Errorf("Expected all presses released after settling, %d outstanding", outstanding)
	}
}

// TestForceReleaseClearsState verifies force release leaves no axis
// pressed or held.
func TestForceReleaseClearsState(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("move_left", input.Key(0x41), ModeHold)
	e.Bind("move_right", input.Key(0x44), ModePulse)

	now := time.Unix(0, 0)
	e.Update("move_left", 0.8, now)
	e.Update("move_right", 0.9, now)

	e.ForceReleaseAll()

	for name, st := range e.Snapshot() {
		if st.Pressed || st.Held {
			t.Errorf("Axis %s still pressed/held after force release: %+v", name, st)
		}
	}
}

// TestInvalidModeFallsBackToPulse verifies unknown mode strings are
// coerced to pulse at bind time.
func TestInvalidModeFallsBackToPulse(t *testing.T) {
	e := New(&fakeActuator{}, testTuning())
	e.Bind("spin", input.Key(0x20), Mode("bogus"))

	if st := e.Snapshot()["spin"]; st.Mode != ModePulse {
		t.Errorf("Expected mode coerced to pulse, got %q", st.Mode)
	}
}

// TestUnboundAxisIgnored verifies updates for unknown names are no-ops.
func TestUnboundAxisIgnored(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())

	e.Update("nonexistent", 1.0, time.Unix(0, 0))

	if len(act.events) != 0 {
		t.Errorf("Expected no actuator calls for unbound axis, got %v", act.events)
	}
}

// TestDegenerateBandHoldsImmediately verifies a hold threshold at the
// deadzone collapses the pulse band without dividing by zero: anything
// above rest is simply held.
func TestDegenerateBandHoldsImmediately(t *testing.T) {
	act := &fakeActuator{}
	tuning := testTuning()
	tuning.HoldThreshold = tuning.Deadzone
	e := New(act, tuning)
	e.Bind("move_left", input.Key(0x41), ModePulse)

	now := time.Unix(0, 0)
	for i := 0; i < 50; i++ {
		e.Update("move_left", 0.4, now)
		now = now.Add(time.Millisecond)
	}

	presses, releases := act.counts()
	if presses != 1 || releases != 0 {
		t.Errorf("Expected single held press with degenerate band, got %d / %d", presses, releases)
	}
	if st := e.Snapshot()["move_left"]; !st.Held {
		t.Errorf("Expected held state, got %+v", st)
	}
}

// TestActuatorFailureKeepsBookkeeping verifies failed injections do not
// corrupt the engine's pressed/held tracking.
func TestActuatorFailureKeepsBookkeeping(t *testing.T) {
	act := &fakeActuator{fail: true}
	e := New(act, testTuning())
	e.Bind("move_left", input.Key(0x41), ModeHold)

	now := time.Unix(0, 0)
	e.Update("move_left", 0.8, now)

	if st := e.Snapshot()["move_left"]; !st.Pressed || !st.Held {
		t.Errorf("Expected optimistic pressed/held despite failure, got %+v", st)
	}

	e.Update("move_left", 0.0, now.Add(time.Millisecond))
	if st := e.Snapshot()["move_left"]; st.Pressed || st.Held {
		t.Errorf("Expected state cleared despite failed release, got %+v", st)
	}
}

// TestRebindResetsRuntimeState verifies re-binding an existing name
// starts from fresh state.
func TestRebindResetsRuntimeState(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("move_left", input.Key(0x41), ModeHold)
	e.Update("move_left", 0.8, time.Unix(0, 0))

	e.Bind("move_left", input.Key(0x44), ModePulse)

	st := e.Snapshot()["move_left"]
	if st.Pressed || st.Held {
		t.Errorf("Expected fresh state after rebind, got %+v", st)
	}
	if st.Key != input.Key(0x44) || st.Mode != ModePulse {
		t.Errorf("Expected new key and mode after rebind, got %+v", st)
	}
}

// TestSetModeDoesNotTouchKey verifies a mode switch emits no events on
// its own; the caller is responsible for forcing a release afterwards.
func TestSetModeDoesNotTouchKey(t *testing.T) {
	act := &fakeActuator{}
	e := New(act, testTuning())
	e.Bind("move_left", input.Key(0x41), ModePulse)
	e.Update("move_left", 0.9, time.Unix(0, 0))

	before := len(act.events)
	e.SetMode("move_left", ModeHold)
	if len(act.events) != before {
		t.Errorf("Expected no actuator calls from SetMode, got %v", act.events[before:])
	}
	if st := e.Snapshot()["move_left"]; st.Mode != ModeHold {
		t.Errorf("Expected mode switched to hold, got %q", st.Mode)
	}

	e.ForceRelease("move_left")
	if st := e.Snapshot()["move_left"]; st.Pressed || st.Held {
		t.Errorf("Expected clean state after forced release, got %+v", st)
	}
}
