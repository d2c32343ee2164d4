package trace

import "math"

// RangePolicy picks the X range to show from the range covered by the data
type RangePolicy interface {
	Range(min, max float64) (lo, hi float64)
}

// Unbounded shows the full data range
type Unbounded struct{}

func (Unbounded) Range(min, max float64) (float64, float64) {
	return min, max
}

// HighestValues shows only the last Window units of X, ending at the
// highest value seen. The lower bound never goes below the data minimum.
type HighestValues struct {
	Window float64
}

func (h HighestValues) Range(min, max float64) (float64, float64) {
	return math.Max(max-h.Window, min), max
}
