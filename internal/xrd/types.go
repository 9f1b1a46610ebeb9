package xrd

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Contract violations. Callers should test with errors.Is; returned errors
// carry the offending lengths.
var (
	ErrLengthMismatch   = errors.New("index-aligned inputs differ in length")
	ErrCoefficientArity = errors.New("scattering coefficient is not an (a, b) pair")
)

// MillerIndex is an integer (h, k, l) triple.
type MillerIndex [3]int

// Less reports whether m sorts before o under ordered-triple comparison.
func (m MillerIndex) Less(o MillerIndex) bool {
	for i := 0; i < 3; i++ {
		if m[i] != o[i] {
			return m[i] < o[i]
		}
	}
	return false
}

// Vec returns the index as a real-valued vector for intensity computation.
func (m MillerIndex) Vec() r3.Vec {
	return r3.Vec{X: float64(m[0]), Y: float64(m[1]), Z: float64(m[2])}
}

// Coefficient is one (a, b) term of the exponential scattering-factor fit.
type Coefficient struct {
	A float64
	B float64
}

// AtomSite is one scatterer in the unit cell.
type AtomSite struct {
	AtomicNumber int
	Frac         r3.Vec // fractional coordinates
	Occupancy    float64
	DebyeWaller  float64 // B, in Å²
	Coeffs       []Coefficient
}

// Point is the Intensity Engine result for one reflection.
type Point struct {
	TwoTheta  float64 // degrees
	Intensity float64
}

// Peak is an observed peak after merging.
type Peak struct {
	TwoTheta  float64
	Intensity float64
	HKLs      []MillerIndex
	DSpacing  float64
}

// Family is a permutation-equivalence class of Miller indices.
type Family struct {
	HKL          MillerIndex // maximal member
	Multiplicity int
}
