// Package stats implements the per-child statistics record: monotone
// lifecycle counters, heartbeat/resource timing aggregates, and durable
// binary+human persistence.
package stats

import "time"

// Magic identifies an initialised record. Bump this and define a new wire
// layout rather than attempting in-place migration.
const Magic uint32 = 0x50574454 // "PWDT"

// Record is one child's durable statistics.
type Record struct {
	Magic uint32

	StartedAt        time.Time
	CrashedAt        time.Time
	HeartbeatResetAt time.Time

	StartCount          uint64
	CrashCount          uint64
	HeartbeatResetCount uint64
	HeartbeatCount      uint64
	HeartbeatCountOld   uint64

	// AvgHeartbeatCountOld is the running average of HeartbeatCountOld over
	// every crash or heartbeat-reset event (spawn success does not fold in).
	AvgHeartbeatCountOld float64

	FirstHeartbeat TimingAggregate
	InterHeartbeat TimingAggregate

	CPU                 CPUAggregate
	RSS                 RSSAggregate
	ResourceSampleCount uint64
}

// NewRecord returns a freshly initialised record with the magic stamped.
func NewRecord() *Record {
	return &Record{Magic: Magic}
}

// Valid reports whether the record carries the expected magic.
func (r *Record) Valid() bool { return r.Magic == Magic }

// lifecycleEvents is the divisor for the first-heartbeat running average:
// every start, crash, or heartbeat-reset counts as a slot, even one that
// never produces a heartbeat sample. This reproduces the source's
// documented bias rather than fixing it.
func (r *Record) lifecycleEvents() uint64 {
	return r.StartCount + r.CrashCount + r.HeartbeatResetCount
}

func (r *Record) snapshotAndResetHeartbeatCount() {
	r.HeartbeatCountOld = r.HeartbeatCount
	r.HeartbeatCount = 0
}

// foldHeartbeatCountOld folds the just-snapshotted HeartbeatCountOld into
// the running average, counted over every crash or heartbeat-reset event so
// far. Callers must have already incremented CrashCount or
// HeartbeatResetCount for the current event.
func (r *Record) foldHeartbeatCountOld() {
	n := r.CrashCount + r.HeartbeatResetCount
	r.AvgHeartbeatCountOld = (r.AvgHeartbeatCountOld*float64(n-1) + float64(r.HeartbeatCountOld)) / float64(n)
}

// OnSpawnSuccess applies the "on spawn success" update.
func (r *Record) OnSpawnSuccess(wallNow time.Time) {
	r.StartCount++
	r.StartedAt = wallNow
	r.snapshotAndResetHeartbeatCount()
}

// OnCrash applies the "on observed crash" update.
func (r *Record) OnCrash(wallNow time.Time) {
	r.CrashCount++
	r.CrashedAt = wallNow
	r.snapshotAndResetHeartbeatCount()
	r.foldHeartbeatCountOld()
}

// OnHeartbeatReset applies the "on heartbeat timeout -> restart" update.
func (r *Record) OnHeartbeatReset(wallNow time.Time) {
	r.HeartbeatResetCount++
	r.HeartbeatResetAt = wallNow
	r.snapshotAndResetHeartbeatCount()
	r.foldHeartbeatCountOld()
}

// OnHeartbeat applies the "on valid heartbeat" update: increments the
// counter and folds elapsed into the inter-heartbeat aggregate.
func (r *Record) OnHeartbeat(elapsed time.Duration) {
	r.HeartbeatCount++
	r.InterHeartbeat.Observe(elapsed, r.HeartbeatCount)
}

// OnFirstHeartbeat applies the "on first heartbeat after spawn" update.
func (r *Record) OnFirstHeartbeat(elapsed time.Duration) {
	r.FirstHeartbeat.Observe(elapsed, r.lifecycleEvents())
}

// OnResourceSample applies one CPU%/RSS-KB sample pair.
func (r *Record) OnResourceSample(cpuPercent float64, rssKB uint64) {
	r.ResourceSampleCount++
	r.CPU.Observe(cpuPercent)
	r.RSS.Observe(rssKB, r.ResourceSampleCount)
}
