package xrd

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// minChunk is the smallest run of reflections handed to one goroutine.
const minChunk = 64

// Engine computes Lorentz-polarization-corrected intensities. The zero
// value runs sequentially.
type Engine struct {
	// Workers bounds the number of goroutines. Values <= 1 disable
	// parallelism.
	Workers int
}

// ComputeIntensities runs the sequential engine.
func ComputeIntensities(hkls []r3.Vec, gHKLs []float64, wavelength float64, sites []AtomSite) ([]Point, error) {
	return Engine{}.Compute(hkls, gHKLs, wavelength, sites)
}

// Compute returns one Point per reflection in input order. Reflections with
// g == 0 or beyond the wavelength's reach yield (0, 0). Singular
// Lorentz-polarization factors propagate as Inf or NaN.
func (e Engine) Compute(hkls []r3.Vec, gHKLs []float64, wavelength float64, sites []AtomSite) ([]Point, error) {
	if len(hkls) != len(gHKLs) {
		return nil, fmt.Errorf("reflections: hkls=%d g_hkls=%d: %w", len(hkls), len(gHKLs), ErrLengthMismatch)
	}
	out := make([]Point, len(hkls))

	chunk := minChunk
	if e.Workers > 1 {
		if per := (len(hkls) + e.Workers - 1) / e.Workers; per > chunk {
			chunk = per
		}
	}
	if e.Workers <= 1 || len(hkls) <= chunk {
		computeRange(out, hkls, gHKLs, wavelength, sites, 0, len(hkls))
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(e.Workers)
	for start := 0; start < len(hkls); start += chunk {
		end := min(start+chunk, len(hkls))
		g.Go(func() error {
			computeRange(out, hkls, gHKLs, wavelength, sites, start, end)
			return nil
		})
	}
	return out, g.Wait()
}

func computeRange(out []Point, hkls []r3.Vec, gHKLs []float64, wavelength float64, sites []AtomSite, start, end int) {
	factors := make([]float64, len(sites))
	for i := start; i < end; i++ {
		out[i] = reflectionIntensity(hkls[i], gHKLs[i], wavelength, sites, factors)
	}
}

// reflectionIntensity computes one reflection. factors is scratch space of
// len(sites).
func reflectionIntensity(hkl r3.Vec, g, wavelength float64, sites []AtomSite, factors []float64) Point {
	if g == 0 {
		return Point{}
	}
	sinTheta := wavelength * g / 2
	if sinTheta > 1 {
		return Point{}
	}

	theta := math.Asin(sinTheta)
	s := g / 2
	s2 := s * s

	for i, site := range sites {
		f := ScatteringFactor(site.AtomicNumber, s2, site.Coeffs)
		factors[i] = f * site.Occupancy * DebyeWaller(site.DebyeWaller, s2)
	}
	re, im := StructureFactor(hkl, sites, factors)
	raw := re*re + im*im

	twoTheta := 2 * theta
	sinT := math.Sin(theta)
	cos2T := math.Cos(twoTheta)
	lp := (1 + cos2T*cos2T) / (sinT * sinT * math.Cos(theta))

	return Point{
		TwoTheta:  twoTheta * (180 / math.Pi),
		Intensity: raw * lp,
	}
}
