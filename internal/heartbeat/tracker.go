// Package heartbeat implements the per-child liveness protocol: recording
// valid heartbeats and deciding whether a child has timed out, with a
// first-heartbeat flag, a threshold that widens to cover the startup grace
// window, and explicit backward-clock handling.
package heartbeat

import (
	"time"

	"github.com/diffstorm/processWatchdog/internal/child"
)

// SampleKind classifies the latency sample a valid heartbeat produced.
type SampleKind int

const (
	SampleNone SampleKind = iota
	SampleFirst
	SampleInter
)

// Result reports what Record did, for the caller to feed into the
// statistics store.
type Result struct {
	Kind    SampleKind
	Elapsed time.Duration
}

// Record applies a valid heartbeat for c at monotonic time now. Callers
// must have already validated that the datagram's PID matches c.PID before
// calling Record.
func Record(c *child.Child, now time.Duration) Result {
	elapsed := now - c.LastHeartbeatAt

	var res Result
	if !c.FirstHeartbeatReceived {
		res = Result{Kind: SampleFirst, Elapsed: elapsed}
		c.FirstHeartbeatReceived = true
	} else {
		res = Result{Kind: SampleInter, Elapsed: elapsed}
	}

	c.LastHeartbeatAt = now
	return res
}

// TimedOut evaluates the timeout decision for c at monotonic time now. If
// the clock appears to have run backward, it resets c.LastHeartbeatAt to
// now and reports no timeout rather than counting it as an event.
func TimedOut(c *child.Child, now time.Duration) bool {
	if !c.Started || c.Spec.HeartbeatIntervalS == 0 {
		return false
	}

	threshold := time.Duration(c.Spec.HeartbeatIntervalS) * time.Second
	if !c.FirstHeartbeatReceived {
		delay := time.Duration(c.Spec.HeartbeatDelayS) * time.Second
		if delay > threshold {
			threshold = delay
		}
	}

	if now < c.LastHeartbeatAt {
		c.LastHeartbeatAt = now
		return false
	}

	return now-c.LastHeartbeatAt >= threshold
}
