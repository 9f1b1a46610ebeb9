package testutil

import (
	"errors"
	"fmt"
	"runtime"
	"testing"
)

// recorder captures failures without failing the enclosing test. Fatalf
// ends the calling goroutine like the real implementation.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(string, ...any) { r.failed = true }

func (r *recorder) Fatalf(string, ...any) {
	r.failed = true
	runtime.Goexit()
}

// fails runs fn against a recorder and reports whether it flagged a failure.
func fails(fn func(tb testing.TB)) bool {
	r := &recorder{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(r)
	}()
	<-done
	return r.failed
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
	if !fails(func(tb testing.TB) { AssertNoError(tb, errors.New("boom")) }) {
		t.Fatal("expected failure when error is non-nil")
	}
}

func TestAssertErrorIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", sentinel), sentinel)

	if !fails(func(tb testing.TB) { AssertErrorIs(tb, errors.New("other"), sentinel) }) {
		t.Fatal("expected failure for an unrelated error")
	}
}

func TestAssertFloatsNear(t *testing.T) {
	t.Parallel()

	AssertFloatsNear(t, []float64{1, 100.0000001}, []float64{1, 100}, 1e-6)

	if !fails(func(tb testing.TB) { AssertFloatsNear(tb, []float64{1.1}, []float64{1}, 1e-6) }) {
		t.Error("expected failure for distant values")
	}
	if !fails(func(tb testing.TB) { AssertFloatsNear(tb, []float64{1}, []float64{1, 2}, 1e-6) }) {
		t.Error("expected failure for mismatched lengths")
	}
}

func TestAssertSortedAscending(t *testing.T) {
	t.Parallel()

	AssertSortedAscending(t, []float64{1, 1, 2, 5})
	if !fails(func(tb testing.TB) { AssertSortedAscending(tb, []float64{2, 1}) }) {
		t.Fatal("expected failure for unsorted input")
	}
}
