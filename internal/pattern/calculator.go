package pattern

import (
	"fmt"
	"math"
	"runtime"

	"github.com/banshee-data/xrd.report/internal/config"
	"github.com/banshee-data/xrd.report/internal/monitoring"
	"github.com/banshee-data/xrd.report/internal/timeutil"
	"github.com/banshee-data/xrd.report/internal/xrd"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options controls post-processing of the computed reflections.
type Options struct {
	TwoThetaMin        float64 // degrees, inclusive
	TwoThetaMax        float64 // degrees, inclusive
	MergeTolerance     float64 // degrees
	ScaledIntensityTol float64 // percent of the strongest peak
	Scaled             bool
	MaxValue           float64
}

// OptionsFromConfig reads Options from a CalcConfig, applying defaults.
func OptionsFromConfig(cfg *config.CalcConfig) Options {
	return Options{
		TwoThetaMin:        cfg.GetTwoThetaMin(),
		TwoThetaMax:        cfg.GetTwoThetaMax(),
		MergeTolerance:     cfg.GetMergeTolerance(),
		ScaledIntensityTol: cfg.GetScaledIntensityTol(),
		Scaled:             cfg.GetScaled(),
		MaxValue:           cfg.GetMaxValue(),
	}
}

// Pattern is a computed diffraction pattern. X, Y, HKLs and D are
// index-aligned, one entry per observed peak, ordered by two-theta.
type Pattern struct {
	RunID string
	Name  string
	X     []float64      // two-theta, degrees
	Y     []float64      // intensity
	HKLs  [][]xrd.Family // families contributing to each peak
	D     []float64      // d-spacing, Å
}

// Len returns the number of peaks.
func (p *Pattern) Len() int { return len(p.X) }

// Calculator turns jobs into patterns for a fixed wavelength.
type Calculator struct {
	Wavelength float64 // Å
	Engine     xrd.Engine
	Clock      timeutil.Clock
	Options    Options
}

// NewCalculator builds a Calculator from configuration. A worker count of 0
// uses GOMAXPROCS.
func NewCalculator(cfg *config.CalcConfig) *Calculator {
	workers := cfg.GetWorkers()
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Calculator{
		Wavelength: cfg.GetWavelength(),
		Engine:     xrd.Engine{Workers: workers},
		Clock:      timeutil.RealClock{},
		Options:    OptionsFromConfig(cfg),
	}
}

// Pattern computes the diffraction pattern of job.
func (c *Calculator) Pattern(job *Job) (*Pattern, error) {
	runID := fmt.Sprintf("xrd-%s", uuid.New().String()[:8])
	start := c.Clock.Now()

	hkls := make([]r3.Vec, len(job.Reflections))
	gs := make([]float64, len(job.Reflections))
	for i, r := range job.Reflections {
		hkls[i] = r.HKL.Vec()
		gs[i] = r.G
	}
	points, err := c.Engine.Compute(hkls, gs, c.Wavelength, job.Sites)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}

	// Window, then sort by angle.
	var tt []float64
	var kept []int
	for i, p := range points {
		if gs[i] <= 0 || c.Wavelength*gs[i]/2 > 1 {
			continue
		}
		if p.TwoTheta < c.Options.TwoThetaMin || p.TwoTheta > c.Options.TwoThetaMax {
			continue
		}
		tt = append(tt, p.TwoTheta)
		kept = append(kept, i)
	}
	order := make([]int, len(tt))
	floats.ArgsortStable(tt, order)

	in := make([]float64, len(order))
	idx := make([]xrd.MillerIndex, len(order))
	d := make([]float64, len(order))
	for k, o := range order {
		i := kept[o]
		in[k] = points[i].Intensity
		idx[k] = job.Reflections[i].HKL
		d[k] = 1 / gs[i]
	}

	peaks, err := xrd.MergePeaks(tt, in, idx, d, c.Options.MergeTolerance)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	peaks = prune(peaks, c.Options.ScaledIntensityTol)

	p := &Pattern{RunID: runID, Name: job.Name}
	x, y, groups, dd := xrd.Unzip(peaks)
	p.X, p.Y, p.D = x, y, dd
	p.HKLs = make([][]xrd.Family, len(groups))
	for i, g := range groups {
		p.HKLs[i] = xrd.Families(g)
	}
	if c.Options.Scaled {
		p.Y = xrd.Normalize(p.Y, c.Options.MaxValue)
	}

	monitoring.Logf("pattern %s (%s): %d reflections, %d in [%g, %g], %d peaks in %v",
		runID, job.Name, len(points), len(kept), c.Options.TwoThetaMin, c.Options.TwoThetaMax,
		p.Len(), c.Clock.Since(start))
	return p, nil
}

// prune drops peaks at or below tolPercent of the strongest finite peak.
// Non-finite peaks are kept as they are.
func prune(peaks []xrd.Peak, tolPercent float64) []xrd.Peak {
	top := math.Inf(-1)
	for _, p := range peaks {
		if isFinite(p.Intensity) && p.Intensity > top {
			top = p.Intensity
		}
	}
	if !(top > 0) {
		return peaks
	}

	out := peaks[:0]
	for _, p := range peaks {
		if !isFinite(p.Intensity) || p.Intensity/top*100 > tolPercent {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Families groups every reflection of the job into permutation families.
func Families(job *Job) []xrd.Family {
	return xrd.Families(job.HKLs())
}
