package xrd

import "math"

// Normalize rescales intensities so the largest equals maxValue. Empty
// input, or input whose maximum is exactly zero, is returned unchanged.
// NaN entries never become the maximum.
func Normalize(intensities []float64, maxValue float64) []float64 {
	if len(intensities) == 0 {
		return intensities
	}

	top := math.Inf(-1)
	for _, v := range intensities {
		if v > top {
			top = v
		}
	}
	if top == 0 {
		return intensities
	}

	out := make([]float64, len(intensities))
	for i, v := range intensities {
		out[i] = v / top * maxValue
	}
	return out
}
