// Package engine converts analog axis magnitudes and button edges into
// keyboard press/release events. It is the signal-to-event core of the
// bridge: axes are smoothed, then mapped to either pulsed key taps (rate
// encodes magnitude) or a continuous hold, while buttons fire single taps
// on rising edges.
package engine

// AxisFilter applies per-axis exponential smoothing to raw samples.
// Each named axis carries its own running average; unknown names start
// at zero. Given the same sample sequence the output is reproducible.
type AxisFilter struct {
	alpha    float64
	filtered map[string]float64
}

// NewAxisFilter creates a filter with the given smoothing coefficient.
// Alpha weighs the newest sample: 1 disables smoothing entirely.
func NewAxisFilter(alpha float64) *AxisFilter {
	return &AxisFilter{
		alpha:    alpha,
		filtered: make(map[string]float64),
	}
}

// Filter folds rawValue into the running average for name and returns
// the smoothed value.
func (f *AxisFilter) Filter(name string, rawValue float64) float64 {
	prev := f.filtered[name]
	val := f.alpha*rawValue + (1.0-f.alpha)*prev
	f.filtered[name] = val
	return val
}

// Reset clears the stored value for name so the next sample starts from
// zero again.
func (f *AxisFilter) Reset(name string) {
	delete(f.filtered, name)
}

// Value returns the current smoothed value for name without updating it.
func (f *AxisFilter) Value(name string) float64 {
	return f.filtered[name]
}
