package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/xrd.report/internal/fsutil"
	"github.com/banshee-data/xrd.report/internal/xrd"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxJobSize bounds job files; reflection lists for large cells stay well
// below this.
const maxJobSize = 64 * 1024 * 1024

// Reflection is one pre-computed candidate reflection.
type Reflection struct {
	HKL xrd.MillerIndex
	G   float64 // reciprocal-lattice magnitude 1/d, Å⁻¹
}

// Job is a decoded and validated calculation request.
type Job struct {
	Name        string
	Reflections []Reflection
	Sites       []xrd.AtomSite
}

type jobFile struct {
	Name        string           `json:"name"`
	Reflections []reflectionFile `json:"reflections"`
	Sites       []siteFile       `json:"sites,omitempty"`
	Atoms       *atomArrays      `json:"atoms,omitempty"`
}

type reflectionFile struct {
	HKL []int   `json:"hkl"`
	G   float64 `json:"g"`
}

type siteFile struct {
	Z         int         `json:"z"`
	Frac      []float64   `json:"frac"`
	Occupancy *float64    `json:"occupancy,omitempty"`
	B         float64     `json:"b"`
	Coeffs    [][]float64 `json:"coeffs"`
}

// atomArrays is the index-aligned form of the site list.
type atomArrays struct {
	FracCoords       [][]float64   `json:"frac_coords"`
	AtomicNumbers    []int         `json:"atomic_numbers"`
	ScatteringCoeffs [][][]float64 `json:"scattering_coeffs"`
	Occupancies      []float64     `json:"occupancies"`
	DWFactors        []float64     `json:"dw_factors"`
}

// LoadJob reads and decodes a job file.
func LoadJob(fsys fsutil.FileSystem, path string) (*Job, error) {
	cleanPath := filepath.Clean(path)
	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat job file: %w", err)
	}
	if info.Size() > maxJobSize {
		return nil, fmt.Errorf("job file too large: %d bytes (max %d)", info.Size(), maxJobSize)
	}
	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	job, err := DecodeJob(data)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", cleanPath, err)
	}
	return job, nil
}

// DecodeJob parses a JSON job. Sites may be given either as a "sites" list
// or as index-aligned "atoms" arrays, not both.
func DecodeJob(data []byte) (*Job, error) {
	var f jobFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse job JSON: %w", err)
	}
	if len(f.Sites) > 0 && f.Atoms != nil {
		return nil, errors.New(`job may set "sites" or "atoms", not both`)
	}

	job := &Job{Name: f.Name, Reflections: make([]Reflection, len(f.Reflections))}
	for i, r := range f.Reflections {
		if len(r.HKL) != 3 {
			return nil, fmt.Errorf("reflection %d: hkl has %d indices, want 3", i, len(r.HKL))
		}
		if r.G < 0 {
			return nil, fmt.Errorf("reflection %d: negative g %v", i, r.G)
		}
		job.Reflections[i] = Reflection{HKL: xrd.MillerIndex{r.HKL[0], r.HKL[1], r.HKL[2]}, G: r.G}
	}

	arrays := f.Atoms
	if arrays == nil {
		arrays = sitesToArrays(f.Sites)
	}
	sites, err := arrays.build()
	if err != nil {
		return nil, err
	}
	job.Sites = sites
	return job, nil
}

func sitesToArrays(sites []siteFile) *atomArrays {
	a := &atomArrays{}
	for _, s := range sites {
		occ := 1.0
		if s.Occupancy != nil {
			occ = *s.Occupancy
		}
		a.FracCoords = append(a.FracCoords, s.Frac)
		a.AtomicNumbers = append(a.AtomicNumbers, s.Z)
		a.ScatteringCoeffs = append(a.ScatteringCoeffs, s.Coeffs)
		a.Occupancies = append(a.Occupancies, occ)
		a.DWFactors = append(a.DWFactors, s.B)
	}
	return a
}

func (a *atomArrays) build() ([]xrd.AtomSite, error) {
	frac := make([]r3.Vec, len(a.FracCoords))
	for i, p := range a.FracCoords {
		if len(p) != 3 {
			return nil, fmt.Errorf("site %d: frac has %d coordinates, want 3", i, len(p))
		}
		frac[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	coeffs := make([][]xrd.Coefficient, len(a.ScatteringCoeffs))
	for i, raw := range a.ScatteringCoeffs {
		c, err := xrd.CoefficientsFromPairs(raw)
		if err != nil {
			return nil, fmt.Errorf("site %d: %w", i, err)
		}
		coeffs[i] = c
	}
	return xrd.NewAtomSites(frac, a.AtomicNumbers, coeffs, a.Occupancies, a.DWFactors)
}

// HKLs returns the integer indices of every reflection in job order.
func (j *Job) HKLs() []xrd.MillerIndex {
	out := make([]xrd.MillerIndex, len(j.Reflections))
	for i, r := range j.Reflections {
		out[i] = r.HKL
	}
	return out
}
