package xrd

import (
	"fmt"
	"math"
)

// MergePeaks coalesces reflections whose two-theta lies strictly within
// tolerance of the current peak's first position. twoThetas must already be
// sorted ascending; MergePeaks does not sort.
//
// A merged peak keeps the position and d-spacing of its first reflection,
// sums intensities and appends every contributing HKL.
func MergePeaks(twoThetas, intensities []float64, hkls []MillerIndex, dHKLs []float64, tolerance float64) ([]Peak, error) {
	n := len(twoThetas)
	if len(intensities) != n || len(hkls) != n || len(dHKLs) != n {
		return nil, fmt.Errorf("peaks: two_thetas=%d intensities=%d hkls=%d d_hkls=%d: %w",
			n, len(intensities), len(hkls), len(dHKLs), ErrLengthMismatch)
	}
	if n == 0 {
		return []Peak{}, nil
	}

	var out []Peak
	cur := Peak{
		TwoTheta:  twoThetas[0],
		Intensity: intensities[0],
		HKLs:      []MillerIndex{hkls[0]},
		DSpacing:  dHKLs[0],
	}
	for i := 1; i < n; i++ {
		if math.Abs(twoThetas[i]-cur.TwoTheta) < tolerance {
			cur.Intensity += intensities[i]
			cur.HKLs = append(cur.HKLs, hkls[i])
			continue
		}
		out = append(out, cur)
		cur = Peak{
			TwoTheta:  twoThetas[i],
			Intensity: intensities[i],
			HKLs:      []MillerIndex{hkls[i]},
			DSpacing:  dHKLs[i],
		}
	}
	return append(out, cur), nil
}

// Unzip splits peaks into the parallel two-theta, intensity, HKL and
// d-spacing sequences.
func Unzip(peaks []Peak) (twoThetas, intensities []float64, hkls [][]MillerIndex, dHKLs []float64) {
	twoThetas = make([]float64, len(peaks))
	intensities = make([]float64, len(peaks))
	hkls = make([][]MillerIndex, len(peaks))
	dHKLs = make([]float64, len(peaks))
	for i, p := range peaks {
		twoThetas[i] = p.TwoTheta
		intensities[i] = p.Intensity
		hkls[i] = p.HKLs
		dHKLs[i] = p.DSpacing
	}
	return twoThetas, intensities, hkls, dHKLs
}
