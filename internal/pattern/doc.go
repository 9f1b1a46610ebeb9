// Package pattern assembles a full powder diffraction pattern from a job:
// intensity computation, two-theta windowing, angle sort, peak merging,
// family annotation, small-peak pruning and optional scaling.
//
// It is the composition root for internal/xrd; xrd never imports pattern.
package pattern
