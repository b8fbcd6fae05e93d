package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceMovesBothBases(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	f.Advance(5 * time.Second)
	if f.Monotonic() != 5*time.Second {
		t.Errorf("Monotonic = %v, want 5s", f.Monotonic())
	}
	if !f.Now().Equal(start.Add(5 * time.Second)) {
		t.Errorf("Now = %v, want %v", f.Now(), start.Add(5*time.Second))
	}
}

func TestFakeSetMonotonicIndependentOfWallClock(t *testing.T) {
	f := NewFake(time.Now())
	f.Advance(10 * time.Second)
	f.SetMonotonic(2 * time.Second) // simulate monotonic clock running backward

	if f.Monotonic() != 2*time.Second {
		t.Errorf("Monotonic = %v, want 2s", f.Monotonic())
	}
}

func TestRealMonotonicNonNegative(t *testing.T) {
	r := NewReal()
	if r.Monotonic() < 0 {
		t.Errorf("Monotonic should never be negative right after construction")
	}
	time.Sleep(5 * time.Millisecond)
	if r.Monotonic() <= 0 {
		t.Errorf("Monotonic should have advanced")
	}
}
