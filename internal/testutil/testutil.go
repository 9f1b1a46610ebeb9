// Package testutil holds assertion helpers shared by the numeric and
// pattern tests.
package testutil

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorIs fails the test unless err wraps target.
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertFloatsNear fails the test unless got and want have equal length and
// agree element-wise within an absolute or relative tolerance of tol.
func AssertFloatsNear(t testing.TB, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !scalar.EqualWithinAbsOrRel(got[i], want[i], tol, tol) {
			t.Errorf("index %d: got %v, want %v (tol %v)", i, got[i], want[i], tol)
		}
	}
}

// AssertSortedAscending fails the test if xs is not non-decreasing.
func AssertSortedAscending(t testing.TB, xs []float64) {
	t.Helper()
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1] {
			t.Fatalf("not sorted at %d: %v < %v", i, xs[i], xs[i-1])
		}
	}
}
