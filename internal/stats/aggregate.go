package stats

import "time"

// TimingAggregate tracks min/max/average of a duration-valued sample stream.
// The running average uses the integer formula avg ← (avg·(n−1) + x)/n
//; n is supplied by the caller on each Observe so that the
// first-heartbeat aggregate can use the lifecycle-event count from §4.6/§9
// instead of a simple running tally.
type TimingAggregate struct {
	Seen       bool
	Min, Max   time.Duration
	Avg        time.Duration
	Count      uint64
}

// Observe folds sample x into the aggregate using divisor n.
func (t *TimingAggregate) Observe(x time.Duration, n uint64) {
	if !t.Seen || x < t.Min {
		t.Min = x
	}
	if !t.Seen || x > t.Max {
		t.Max = x
	}
	if n == 0 {
		n = 1
	}
	t.Avg = time.Duration((int64(t.Avg)*int64(n-1) + int64(x)) / int64(n))
	t.Count = n
	t.Seen = true
}

// CPUAggregate tracks current/min/max/average CPU percent. The average is an
// exponential moving average with smoothing 0.1.
type CPUAggregate struct {
	Seen               bool
	Current, Min, Max  float64
	Avg                float64
}

const cpuEMASmoothing = 0.1

// Observe folds one CPU% sample into the aggregate.
func (c *CPUAggregate) Observe(x float64) {
	if !c.Seen || x < c.Min {
		c.Min = x
	}
	if !c.Seen || x > c.Max {
		c.Max = x
	}
	if !c.Seen {
		c.Avg = x
	} else {
		c.Avg = cpuEMASmoothing*x + (1-cpuEMASmoothing)*c.Avg
	}
	c.Current = x
	c.Seen = true
}

// RSSAggregate tracks current/min/max/average resident set size in KB. The
// average is a true cumulative average over the resource sample count,
// unlike CPU's EMA.
type RSSAggregate struct {
	Seen              bool
	Current, Min, Max uint64
	Avg               float64
}

// Observe folds one RSS-KB sample into the aggregate using divisor n (the
// running resource_sample_count).
func (r *RSSAggregate) Observe(x uint64, n uint64) {
	if !r.Seen || x < r.Min {
		r.Min = x
	}
	if !r.Seen || x > r.Max {
		r.Max = x
	}
	if n == 0 {
		n = 1
	}
	r.Avg = (r.Avg*float64(n-1) + float64(x)) / float64(n)
	r.Current = x
	r.Seen = true
}
