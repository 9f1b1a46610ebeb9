// Package radiation provides the named X-ray source lines and their
// wavelengths in ångström.
package radiation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Default is the source used when none is configured.
const Default = "CuKa"

// Wavelengths maps source names to wavelengths (Å). Kα is the weighted
// Kα1/Kα2 average.
var Wavelengths = map[string]float64{
	"CuKa":  1.54184,
	"CuKa2": 1.54439,
	"CuKa1": 1.54056,
	"CuKb1": 1.39222,
	"MoKa":  0.71073,
	"MoKa2": 0.71359,
	"MoKa1": 0.70930,
	"MoKb1": 0.63229,
	"CrKa":  2.29100,
	"CrKa2": 2.29361,
	"CrKa1": 2.28970,
	"CrKb1": 2.08487,
	"FeKa":  1.93735,
	"FeKa2": 1.93998,
	"FeKa1": 1.93604,
	"FeKb1": 1.75661,
	"CoKa":  1.79026,
	"CoKa2": 1.79285,
	"CoKa1": 1.78896,
	"CoKb1": 1.63079,
	"AgKa":  0.560885,
	"AgKa2": 0.563813,
	"AgKa1": 0.559421,
	"AgKb1": 0.497082,
}

// Lookup returns the wavelength of a named source. Names are matched
// case-insensitively, so "Cuka" and "CUKA" both resolve to CuKa.
func Lookup(name string) (float64, bool) {
	if w, ok := Wavelengths[name]; ok {
		return w, true
	}
	for k, w := range Wavelengths {
		if strings.EqualFold(k, name) {
			return w, true
		}
	}
	return 0, false
}

// IsValid checks if the given source name is known.
func IsValid(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Names returns all source names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Wavelengths))
	for k := range Wavelengths {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetValidNamesString returns a comma-separated string of valid sources for error messages
func GetValidNamesString() string {
	return strings.Join(Names(), ", ")
}

// Resolve accepts either a source name or a positive wavelength in Å.
func Resolve(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if w, ok := Lookup(s); ok {
		return w, nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown radiation %q (valid: %s)", s, GetValidNamesString())
	}
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return 0, fmt.Errorf("wavelength must be a positive finite number, got %v", w)
	}
	return w, nil
}
