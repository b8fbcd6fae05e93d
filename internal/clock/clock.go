// Package clock abstracts wall-clock and monotonic time so the supervisor
// loop and its components can be driven deterministically in tests.
package clock

import "time"

// Clock supplies both time bases the supervisor needs: Now for display
// timestamps (stats_<app>.log, daily reboot comparisons), Monotonic for
// the supervisor's timing decisions (start delay, heartbeat timeouts,
// persistence/resource cadences). The child driver's termination and start
// wait windows use real time (time.Now) instead.
type Clock interface {
	Now() time.Time
	Monotonic() time.Duration
}

// Real is a Clock backed by the OS clock. Monotonic is measured relative to
// the instant the Real clock was constructed (normally supervisor start).
type Real struct {
	epoch time.Time
}

// NewReal returns a Real clock whose monotonic reference point is now.
func NewReal() *Real {
	return &Real{epoch: time.Now()}
}

func (r *Real) Now() time.Time { return time.Now() }

func (r *Real) Monotonic() time.Duration { return time.Since(r.epoch) }

// Fake is a Clock a test can advance by hand, so heartbeat-timeout and
// reboot-scheduling logic can be exercised without sleeping in real time.
type Fake struct {
	now  time.Time
	mono time.Duration
}

// NewFake returns a Fake clock starting at the given wall-clock time with
// monotonic reading zero.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time { return f.now }

func (f *Fake) Monotonic() time.Duration { return f.mono }

// Advance moves both time bases forward by d. Passing a negative d lets
// tests simulate a backward-running wall clock.
func (f *Fake) Advance(d time.Duration) {
	f.now = f.now.Add(d)
	f.mono += d
}

// SetMonotonic overrides the monotonic reading directly, used by tests that
// want to simulate the monotonic clock running backward independently of
// wall time.
func (f *Fake) SetMonotonic(d time.Duration) {
	f.mono = d
}
