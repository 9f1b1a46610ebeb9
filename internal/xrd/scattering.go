package xrd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// scatteringScale is the prefactor applied to the s²-weighted coefficient
// sum of the tabulated (a, b) fit.
const scatteringScale = 41.78214

// ScatteringFactor returns the atomic scattering factor
// f = Z - 41.78214·s²·Σ a_j·exp(-b_j·s²).
func ScatteringFactor(z int, s2 float64, coeffs []Coefficient) float64 {
	var sum float64
	for _, c := range coeffs {
		sum += c.A * math.Exp(-c.B*s2)
	}
	return float64(z) - scatteringScale*s2*sum
}

// DebyeWaller returns the thermal attenuation exp(-B·s²).
func DebyeWaller(b, s2 float64) float64 {
	return math.Exp(-b * s2)
}

// StructureFactor returns the real and imaginary parts of
// F = Σ f_i·exp(2πi·g·r_i), where factors[i] is the already-corrected
// f·occupancy·dw of site i.
func StructureFactor(g r3.Vec, sites []AtomSite, factors []float64) (re, im float64) {
	for i, site := range sites {
		angle := 2 * math.Pi * r3.Dot(g, site.Frac)
		re += factors[i] * math.Cos(angle)
		im += factors[i] * math.Sin(angle)
	}
	return re, im
}

// NewAtomSites zips per-atom parallel arrays into sites. All arrays must
// have the same length.
func NewAtomSites(fracCoords []r3.Vec, atomicNumbers []int, coeffs [][]Coefficient, occupancies, dwFactors []float64) ([]AtomSite, error) {
	n := len(fracCoords)
	if len(atomicNumbers) != n || len(coeffs) != n || len(occupancies) != n || len(dwFactors) != n {
		return nil, fmt.Errorf("atom arrays: frac_coords=%d atomic_numbers=%d scattering_coeffs=%d occupancies=%d dw_factors=%d: %w",
			n, len(atomicNumbers), len(coeffs), len(occupancies), len(dwFactors), ErrLengthMismatch)
	}
	sites := make([]AtomSite, n)
	for i := range sites {
		sites[i] = AtomSite{
			AtomicNumber: atomicNumbers[i],
			Frac:         fracCoords[i],
			Occupancy:    occupancies[i],
			DebyeWaller:  dwFactors[i],
			Coeffs:       coeffs[i],
		}
	}
	return sites, nil
}

// CoefficientsFromPairs converts a raw [[a, b], ...] table, rejecting any
// entry that is not exactly a pair.
func CoefficientsFromPairs(raw [][]float64) ([]Coefficient, error) {
	out := make([]Coefficient, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("coefficient %d has %d values: %w", i, len(pair), ErrCoefficientArity)
		}
		out[i] = Coefficient{A: pair[0], B: pair[1]}
	}
	return out, nil
}
