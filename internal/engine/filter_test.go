package engine

import (
	"math"
	"testing"
)

// TestFilterConvergesToConstantInput verifies the closed form of the
// recurrence: with alpha=0.3 and a constant input of 1.0 the filtered
// value after n samples is 1 - 0.7^n, monotonic and bounded by 1.
func TestFilterConvergesToConstantInput(t *testing.T) {
	f := NewAxisFilter(0.3)

	prev := 0.0
	for n := 1; n <= 50; n++ {
		got := f.Filter("x", 1.0)
		want := 1.0 - math.Pow(0.7, float64(n))
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("Sample %d: got %v, want %v", n, got, want)
		}
		if got <= prev {
			t.Errorf("Sample %d: expected monotonic increase, %v <= %v", n, got, prev)
		}
		if got > 1.0 {
			t.Errorf("Sample %d: filtered value %v exceeds input bound", n, got)
		}
		prev = got
	}
}

// TestFilterDeterministic verifies identical sample sequences produce
// bit-for-bit identical outputs.
func TestFilterDeterministic(t *testing.T) {
	samples := []float64{0.1, -0.4, 0.9, 0.0, 0.33, -1.0, 0.72}

	a := NewAxisFilter(0.25)
	b := NewAxisFilter(0.25)
	for i, s := range samples {
		va := a.Filter("yaw", s)
		vb := b.Filter("yaw", s)
		if va != vb {
			t.Errorf("Sample %d: %v != %v", i, va, vb)
		}
	}
}

// TestFilterAxesAreIndependent verifies each axis name carries its own
// state, auto-initialized at zero.
func TestFilterAxesAreIndependent(t *testing.T) {
	f := NewAxisFilter(0.5)

	f.Filter("x", 1.0)
	if v := f.Filter("y", 1.0); v != 0.5 {
		t.Errorf("Expected fresh axis to start from zero, got %v", v)
	}
	if v := f.Value("x"); v != 0.5 {
		t.Errorf("Expected x unchanged by y updates, got %v", v)
	}
}

// TestFilterReset verifies Reset drops the stored history.
func TestFilterReset(t *testing.T) {
	f := NewAxisFilter(0.5)
	f.Filter("x", 1.0)
	f.Reset("x")

	if v := f.Filter("x", 1.0); v != 0.5 {
		t.Errorf("Expected reset axis to restart from zero, got %v", v)
	}
}
