package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"github.com/banshee-data/xrd.report/internal/fsutil"
	"github.com/banshee-data/xrd.report/internal/radiation"
)

// DefaultConfigPath is the path to the canonical calculation defaults file.
const DefaultConfigPath = "config/calc.defaults.json"

// CalcConfig holds the pattern calculation parameters. Nil fields fall back
// to the defaults returned by the Get* methods, so partial files are safe.
type CalcConfig struct {
	// Source name ("CuKa") or wavelength in Å ("1.5406")
	Wavelength *string `json:"wavelength,omitempty"`

	// Two-theta window, degrees
	TwoThetaMin *float64 `json:"two_theta_min,omitempty"`
	TwoThetaMax *float64 `json:"two_theta_max,omitempty"`

	// Peak post-processing
	MergeTolerance     *float64 `json:"merge_tolerance,omitempty"`      // degrees
	ScaledIntensityTol *float64 `json:"scaled_intensity_tol,omitempty"` // percent of strongest peak
	Scaled             *bool    `json:"scaled,omitempty"`
	MaxValue           *float64 `json:"max_value,omitempty"`

	// Intensity engine goroutines; 0 means GOMAXPROCS
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyCalcConfig returns a CalcConfig with all fields set to nil.
func EmptyCalcConfig() *CalcConfig {
	return &CalcConfig{}
}

// DefaultCalcConfig returns a CalcConfig with every field populated.
func DefaultCalcConfig() *CalcConfig {
	return &CalcConfig{
		Wavelength:         ptrString(radiation.Default),
		TwoThetaMin:        ptrFloat64(0),
		TwoThetaMax:        ptrFloat64(90),
		MergeTolerance:     ptrFloat64(1e-5),
		ScaledIntensityTol: ptrFloat64(1e-3),
		Scaled:             ptrBool(true),
		MaxValue:           ptrFloat64(100),
		Workers:            ptrInt(0),
	}
}

// LoadCalcConfig loads a CalcConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadCalcConfig(fsys fsutil.FileSystem, path string) (*CalcConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyCalcConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *CalcConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadCalcConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid. NaN fails every
// numeric check.
func (c *CalcConfig) Validate() error {
	if c.Wavelength != nil {
		if _, err := radiation.Resolve(*c.Wavelength); err != nil {
			return fmt.Errorf("wavelength: %w", err)
		}
	}
	if !(c.GetTwoThetaMin() >= 0 && c.GetTwoThetaMax() <= 180) {
		return fmt.Errorf("two-theta range must lie within [0, 180], got [%g, %g]", c.GetTwoThetaMin(), c.GetTwoThetaMax())
	}
	if !(c.GetTwoThetaMin() < c.GetTwoThetaMax()) {
		return fmt.Errorf("two_theta_min (%g) must be below two_theta_max (%g)", c.GetTwoThetaMin(), c.GetTwoThetaMax())
	}
	if c.MergeTolerance != nil && !(*c.MergeTolerance >= 0) {
		return fmt.Errorf("merge_tolerance must be non-negative, got %g", *c.MergeTolerance)
	}
	if c.ScaledIntensityTol != nil && !(*c.ScaledIntensityTol >= 0) {
		return fmt.Errorf("scaled_intensity_tol must be non-negative, got %g", *c.ScaledIntensityTol)
	}
	if c.MaxValue != nil && !(*c.MaxValue > 0 && !math.IsInf(*c.MaxValue, 1)) {
		return fmt.Errorf("max_value must be positive, got %g", *c.MaxValue)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// GetWavelength resolves the configured source to Å. An unresolvable value
// falls back to the default source; Validate reports it.
func (c *CalcConfig) GetWavelength() float64 {
	if c.Wavelength != nil {
		if w, err := radiation.Resolve(*c.Wavelength); err == nil {
			return w
		}
	}
	w, _ := radiation.Lookup(radiation.Default)
	return w
}

// GetTwoThetaMin returns the two_theta_min value or the default.
func (c *CalcConfig) GetTwoThetaMin() float64 {
	if c.TwoThetaMin == nil {
		return 0
	}
	return *c.TwoThetaMin
}

// GetTwoThetaMax returns the two_theta_max value or the default.
func (c *CalcConfig) GetTwoThetaMax() float64 {
	if c.TwoThetaMax == nil {
		return 90
	}
	return *c.TwoThetaMax
}

// GetMergeTolerance returns the merge_tolerance value or the default.
func (c *CalcConfig) GetMergeTolerance() float64 {
	if c.MergeTolerance == nil {
		return 1e-5
	}
	return *c.MergeTolerance
}

// GetScaledIntensityTol returns the scaled_intensity_tol value or the default.
func (c *CalcConfig) GetScaledIntensityTol() float64 {
	if c.ScaledIntensityTol == nil {
		return 1e-3
	}
	return *c.ScaledIntensityTol
}

// GetScaled returns the scaled value or the default.
func (c *CalcConfig) GetScaled() bool {
	if c.Scaled == nil {
		return true
	}
	return *c.Scaled
}

// GetMaxValue returns the max_value value or the default.
func (c *CalcConfig) GetMaxValue() float64 {
	if c.MaxValue == nil {
		return 100
	}
	return *c.MaxValue
}

// GetWorkers returns the workers value or the default (0, meaning GOMAXPROCS).
func (c *CalcConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}
