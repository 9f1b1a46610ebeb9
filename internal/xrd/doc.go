// Package xrd owns the numeric core of the powder diffraction simulator.
//
// Responsibilities: Miller-index family grouping, atomic scattering and
// structure-factor math, per-reflection intensity with Lorentz-polarization
// correction, peak merging by two-theta tolerance, and intensity
// normalization.
// Key types: MillerIndex, AtomSite, Point, Peak, Family.
//
// Dependency rule: xrd performs no I/O and keeps no state between calls.
// Sorting by angle, range filtering and file formats live in
// internal/pattern.
package xrd
