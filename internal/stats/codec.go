package stats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// wireRecord is the fixed-layout binary form of Record. Magic is last, so a
// write truncated partway through is rejected on reload instead of being
// accepted with a zeroed tail.
type wireRecord struct {
	StartedAtUnix        int64
	CrashedAtUnix        int64
	HeartbeatResetAtUnix int64

	StartCount          uint64
	CrashCount          uint64
	HeartbeatResetCount uint64
	HeartbeatCount      uint64
	HeartbeatCountOld   uint64

	AvgHeartbeatCountOld float64

	FirstHeartbeatSeen  uint8
	_                   [7]byte
	FirstHeartbeatMin   int64
	FirstHeartbeatMax   int64
	FirstHeartbeatAvg   int64
	FirstHeartbeatCount uint64

	InterHeartbeatSeen  uint8
	_                   [7]byte
	InterHeartbeatMin   int64
	InterHeartbeatMax   int64
	InterHeartbeatAvg   int64
	InterHeartbeatCount uint64

	CPUSeen    uint8
	_          [7]byte
	CPUCurrent float64
	CPUMin     float64
	CPUMax     float64
	CPUAvg     float64

	RSSSeen    uint8
	_          [7]byte
	RSSCurrent uint64
	RSSMin     uint64
	RSSMax     uint64
	RSSAvg     float64

	ResourceSampleCount uint64

	Magic uint32
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func unixToTime(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func encode(r *Record) ([]byte, error) {
	w := wireRecord{
		StartedAtUnix:        timeToUnix(r.StartedAt),
		CrashedAtUnix:        timeToUnix(r.CrashedAt),
		HeartbeatResetAtUnix: timeToUnix(r.HeartbeatResetAt),

		StartCount:          r.StartCount,
		CrashCount:          r.CrashCount,
		HeartbeatResetCount: r.HeartbeatResetCount,
		HeartbeatCount:      r.HeartbeatCount,
		HeartbeatCountOld:   r.HeartbeatCountOld,

		AvgHeartbeatCountOld: r.AvgHeartbeatCountOld,

		FirstHeartbeatSeen:  boolToU8(r.FirstHeartbeat.Seen),
		FirstHeartbeatMin:   int64(r.FirstHeartbeat.Min),
		FirstHeartbeatMax:   int64(r.FirstHeartbeat.Max),
		FirstHeartbeatAvg:   int64(r.FirstHeartbeat.Avg),
		FirstHeartbeatCount: r.FirstHeartbeat.Count,

		InterHeartbeatSeen:  boolToU8(r.InterHeartbeat.Seen),
		InterHeartbeatMin:   int64(r.InterHeartbeat.Min),
		InterHeartbeatMax:   int64(r.InterHeartbeat.Max),
		InterHeartbeatAvg:   int64(r.InterHeartbeat.Avg),
		InterHeartbeatCount: r.InterHeartbeat.Count,

		CPUSeen:    boolToU8(r.CPU.Seen),
		CPUCurrent: r.CPU.Current,
		CPUMin:     r.CPU.Min,
		CPUMax:     r.CPU.Max,
		CPUAvg:     r.CPU.Avg,

		RSSSeen:    boolToU8(r.RSS.Seen),
		RSSCurrent: r.RSS.Current,
		RSSMin:     r.RSS.Min,
		RSSMax:     r.RSS.Max,
		RSSAvg:     r.RSS.Avg,

		ResourceSampleCount: r.ResourceSampleCount,
		Magic:               Magic,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*Record, error) {
	var w wireRecord
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &w); err != nil {
		return nil, fmt.Errorf("truncated or malformed record: %w", err)
	}
	if w.Magic != Magic {
		return nil, fmt.Errorf("magic mismatch: got %#x want %#x", w.Magic, Magic)
	}

	return &Record{
		Magic: Magic,

		StartedAt:        unixToTime(w.StartedAtUnix),
		CrashedAt:        unixToTime(w.CrashedAtUnix),
		HeartbeatResetAt: unixToTime(w.HeartbeatResetAtUnix),

		StartCount:          w.StartCount,
		CrashCount:          w.CrashCount,
		HeartbeatResetCount: w.HeartbeatResetCount,
		HeartbeatCount:      w.HeartbeatCount,
		HeartbeatCountOld:   w.HeartbeatCountOld,

		AvgHeartbeatCountOld: w.AvgHeartbeatCountOld,

		FirstHeartbeat: TimingAggregate{
			Seen:  w.FirstHeartbeatSeen != 0,
			Min:   time.Duration(w.FirstHeartbeatMin),
			Max:   time.Duration(w.FirstHeartbeatMax),
			Avg:   time.Duration(w.FirstHeartbeatAvg),
			Count: w.FirstHeartbeatCount,
		},
		InterHeartbeat: TimingAggregate{
			Seen:  w.InterHeartbeatSeen != 0,
			Min:   time.Duration(w.InterHeartbeatMin),
			Max:   time.Duration(w.InterHeartbeatMax),
			Avg:   time.Duration(w.InterHeartbeatAvg),
			Count: w.InterHeartbeatCount,
		},
		CPU: CPUAggregate{
			Seen:    w.CPUSeen != 0,
			Current: w.CPUCurrent,
			Min:     w.CPUMin,
			Max:     w.CPUMax,
			Avg:     w.CPUAvg,
		},
		RSS: RSSAggregate{
			Seen:    w.RSSSeen != 0,
			Current: w.RSSCurrent,
			Min:     w.RSSMin,
			Max:     w.RSSMax,
			Avg:     w.RSSAvg,
		},
		ResourceSampleCount: w.ResourceSampleCount,
	}, nil
}
