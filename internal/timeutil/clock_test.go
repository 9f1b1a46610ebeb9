package timeutil

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	start := c.Now()
	if c.Since(start) < 0 {
		t.Error("Since returned a negative duration")
	}
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 7, 17, 31, 29, 0, time.UTC)
	c := NewMockClock(start)

	if now := c.Now(); !now.Equal(start) {
		t.Fatalf("Now() = %v, want %v", now, start)
	}
	c.Advance(250 * time.Millisecond)
	if got := c.Since(start); got != 250*time.Millisecond {
		t.Errorf("Since = %v, want 250ms", got)
	}
}

func TestMockClock_AutoAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.AutoAdvance(time.Second)

	t0 := c.Now()
	if got := c.Since(t0); got != time.Second {
		t.Errorf("Since after one Now = %v, want 1s", got)
	}
	c.Now()
	if got := c.Since(t0); got != 2*time.Second {
		t.Errorf("Since after two Now = %v, want 2s", got)
	}
}
