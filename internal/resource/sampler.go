// Package resource samples per-child CPU% and RSS on a 60-second cadence.
// The arithmetic that folds samples into running aggregates lives in
// internal/stats; this package only pulls one OS-reported snapshot per
// call, via gopsutil's process.Process (CPUPercent + MemoryInfo).
package resource

import (
	"github.com/shirou/gopsutil/v3/process"
)

// Sampler pulls one CPU%/RSS-KB reading for a PID.
type Sampler struct{}

// NewSampler returns a Sampler. It holds no state; gopsutil looks up /proc
// (or the platform equivalent) fresh on each call.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Sample reads CPU percent and resident set size (in KB) for pid. ok is
// false if the process could not be inspected (already exited, permission
// denied, or an unsupported platform) — the caller should skip the sample
// for this tick rather than record a zero.
func (s *Sampler) Sample(pid int) (cpuPercent float64, rssKB uint64, ok bool) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, 0, false
	}

	cpuPercent, err = proc.CPUPercent()
	if err != nil {
		return 0, 0, false
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil || memInfo == nil {
		return 0, 0, false
	}

	return cpuPercent, memInfo.RSS / 1024, true
}
