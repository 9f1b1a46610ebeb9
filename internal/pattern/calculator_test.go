package pattern

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/xrd.report/internal/config"
	"github.com/banshee-data/xrd.report/internal/monitoring"
	"github.com/banshee-data/xrd.report/internal/testutil"
	"github.com/banshee-data/xrd.report/internal/timeutil"
	"github.com/banshee-data/xrd.report/internal/xrd"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// simpleCubic returns a one-atom cubic cell with lattice constant 4 Å and
// reflections listed out of angle order.
func simpleCubic() *Job {
	const a = 4.0
	hkls := []xrd.MillerIndex{
		{1, 1, 0}, {1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 0, 1}, {0, 0, 1}, {-1, 0, 0}, {5, 5, 5},
	}
	job := &Job{
		Name: "sc-Fe",
		Sites: []xrd.AtomSite{{
			AtomicNumber: 26,
			Occupancy:    1,
			DebyeWaller:  0.35,
			Coeffs:       []xrd.Coefficient{{A: 0.5, B: 1.2}},
		}},
	}
	for _, h := range hkls {
		job.Reflections = append(job.Reflections, Reflection{HKL: h, G: r3.Norm(h.Vec()) / a})
	}
	return job
}

func testCalculator(opts Options) *Calculator {
	clock := timeutil.NewMockClock(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	clock.AutoAdvance(2 * time.Millisecond)
	return &Calculator{
		Wavelength: 1.54184,
		Engine:     xrd.Engine{Workers: 1},
		Clock:      clock,
		Options:    opts,
	}
}

func defaultOptions() Options {
	return OptionsFromConfig(config.DefaultCalcConfig())
}

func TestCalculator_Pattern(t *testing.T) {
	var lines []string
	defer monitoring.Capture(&lines)()

	p, err := testCalculator(defaultOptions()).Pattern(simpleCubic())
	require.NoError(t, err)

	require.Equal(t, 2, p.Len())
	testutil.AssertSortedAscending(t, p.X)
	assert.True(t, strings.HasPrefix(p.RunID, "xrd-"), p.RunID)
	assert.Equal(t, "sc-Fe", p.Name)

	want := [][]xrd.Family{
		{{HKL: xrd.MillerIndex{1, 0, 0}, Multiplicity: 4}},
		{{HKL: xrd.MillerIndex{1, 1, 0}, Multiplicity: 2}},
	}
	if diff := cmp.Diff(want, p.HKLs); diff != "" {
		t.Errorf("families mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 4.0, p.D[0])
	assert.InDelta(t, 4/math.Sqrt2, p.D[1], 1e-12)
	assert.Equal(t, 100.0, floats.Max(p.Y))

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "8 reflections")
	assert.Contains(t, lines[0], "2 peaks in 2ms")
}

func TestCalculator_Unscaled(t *testing.T) {
	opts := defaultOptions()
	opts.Scaled = false
	job := simpleCubic()

	var lines []string
	defer monitoring.Capture(&lines)()

	p, err := testCalculator(opts).Pattern(job)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	// The (100) peak carries four equal reflections.
	pts, err := xrd.ComputeIntensities([]r3.Vec{{X: 1}}, []float64{0.25}, 1.54184, job.Sites)
	require.NoError(t, err)
	assert.InEpsilon(t, 4*pts[0].Intensity, p.Y[0], 1e-12)
	assert.InDelta(t, pts[0].TwoTheta, p.X[0], 1e-12)
}

func TestCalculator_TwoThetaWindow(t *testing.T) {
	var lines []string
	defer monitoring.Capture(&lines)()

	full, err := testCalculator(defaultOptions()).Pattern(simpleCubic())
	require.NoError(t, err)
	require.Equal(t, 2, full.Len())

	opts := defaultOptions()
	opts.TwoThetaMax = (full.X[0] + full.X[1]) / 2
	p, err := testCalculator(opts).Pattern(simpleCubic())
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, full.X[0], p.X[0])

	opts = defaultOptions()
	opts.TwoThetaMin = full.X[1] + 1
	p, err = testCalculator(opts).Pattern(simpleCubic())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestCalculator_ParallelEngineMatches(t *testing.T) {
	var lines []string
	defer monitoring.Capture(&lines)()

	seq, err := testCalculator(defaultOptions()).Pattern(simpleCubic())
	require.NoError(t, err)

	c := testCalculator(defaultOptions())
	c.Engine = xrd.Engine{Workers: 4}
	par, err := c.Pattern(simpleCubic())
	require.NoError(t, err)

	assert.Equal(t, seq.X, par.X)
	assert.Equal(t, seq.Y, par.Y)
	assert.Equal(t, seq.HKLs, par.HKLs)
}

func TestNewCalculator(t *testing.T) {
	cfg := config.DefaultCalcConfig()
	mo := "MoKa"
	cfg.Wavelength = &mo

	c := NewCalculator(cfg)
	assert.Equal(t, 0.71073, c.Wavelength)
	assert.GreaterOrEqual(t, c.Engine.Workers, 1)
	assert.Equal(t, defaultOptions(), c.Options)
	assert.IsType(t, timeutil.RealClock{}, c.Clock)
}

func TestPrune(t *testing.T) {
	peaks := []xrd.Peak{
		{TwoTheta: 10, Intensity: 100},
		{TwoTheta: 11, Intensity: 0.0005},
		{TwoTheta: 12, Intensity: 50},
		{TwoTheta: 13, Intensity: 0.0008},
	}
	got := prune(peaks, 1e-3)
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].TwoTheta)
	assert.Equal(t, 12.0, got[1].TwoTheta)

	zero := []xrd.Peak{{Intensity: 0}, {Intensity: 0}}
	assert.Len(t, prune(zero, 1e-3), 2, "all-zero peaks are kept")
	assert.Empty(t, prune(nil, 1e-3))
}

func TestPrune_NonFiniteStrongestPeak(t *testing.T) {
	peaks := []xrd.Peak{
		{TwoTheta: 1e-9, Intensity: math.Inf(1)},
		{TwoTheta: 10, Intensity: 100},
		{TwoTheta: 11, Intensity: 0.0005},
		{TwoTheta: 12, Intensity: math.NaN()},
		{TwoTheta: 13, Intensity: 50},
	}
	got := prune(peaks, 1e-3)
	var tt []float64
	for _, p := range got {
		tt = append(tt, p.TwoTheta)
	}
	assert.Equal(t, []float64{1e-9, 10, 12, 13}, tt)
}

func TestCalculator_SingularReflectionKept(t *testing.T) {
	var lines []string
	defer monitoring.Capture(&lines)()

	// sin²θ underflows to zero, so the Lorentz factor is +Inf.
	job := simpleCubic()
	job.Reflections = append(job.Reflections, Reflection{HKL: xrd.MillerIndex{0, 0, 2}, G: 1e-170})

	opts := defaultOptions()
	opts.Scaled = false
	p, err := testCalculator(opts).Pattern(job)
	require.NoError(t, err)

	require.Equal(t, 3, p.Len())
	assert.True(t, math.IsInf(p.Y[0], 1), "got %v", p.Y[0])
	assert.False(t, math.IsInf(p.Y[1], 0) || math.IsNaN(p.Y[1]))
	assert.False(t, math.IsInf(p.Y[2], 0) || math.IsNaN(p.Y[2]))
	assert.Equal(t, []xrd.Family{{HKL: xrd.MillerIndex{0, 0, 2}, Multiplicity: 1}}, p.HKLs[0])
}

func TestFamilies(t *testing.T) {
	got := Families(simpleCubic())
	want := []xrd.Family{
		{HKL: xrd.MillerIndex{1, 1, 0}, Multiplicity: 2},
		{HKL: xrd.MillerIndex{1, 0, 0}, Multiplicity: 4},
		{HKL: xrd.MillerIndex{0, 0, 0}, Multiplicity: 1},
		{HKL: xrd.MillerIndex{5, 5, 5}, Multiplicity: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Families mismatch (-want +got):\n%s", diff)
	}
}
