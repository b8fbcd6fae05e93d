package stats

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/diffstorm/processWatchdog/internal/logx"
)

// Store owns the two per-child files: stats_<app>.raw (binary) and
// stats_<app>.log (human text), both in dir. Writes are atomic
// (temp file + rename) and the binary layout is magic-guarded.
type Store struct {
	dir   string
	runID string
}

// NewStore returns a Store rooted at dir (the supervisor's working
// directory). It generates a random run ID stamped into every human log
// this Store writes, purely so an operator can tell which log lines came
// from which supervisor run.
func NewStore(dir string) *Store {
	return &Store{dir: dir, runID: uuid.NewString()}
}

func (s *Store) rawPath(name string) string {
	return filepath.Join(s.dir, "stats_"+name+".raw")
}

func (s *Store) logPath(name string) string {
	return filepath.Join(s.dir, "stats_"+name+".log")
}

// Load reads the binary record for name. A missing file yields a fresh
// record; a corrupt or wrong-magic file yields a fresh record with a
// logged warning — the rest of the child table is unaffected.
func (s *Store) Load(name string) *Record {
	data, err := os.ReadFile(s.rawPath(name))
	if err != nil {
		if !os.IsNotExist(err) {
			logx.Warn("stats", "%s: read failed, starting fresh record: %v", name, err)
		}
		return NewRecord()
	}
	rec, err := decode(data)
	if err != nil {
		logx.Warn("stats", "%s: %v, resetting record", name, err)
		return NewRecord()
	}
	return rec
}

// Persist writes both files for name. state is a free-form label describing
// the child's current lifecycle state; it is reported in the human log only,
// never in the binary record. Errors are logged by the caller's choice; a
// failed write leaves the in-memory record untouched so the next persistence
// cadence retries.
func (s *Store) Persist(name string, r *Record, state string) error {
	if err := s.writeRaw(name, r); err != nil {
		return fmt.Errorf("stats: write %s: %w", s.rawPath(name), err)
	}
	if err := s.writeLog(name, r, state); err != nil {
		return fmt.Errorf("stats: write %s: %w", s.logPath(name), err)
	}
	return nil
}

func (s *Store) writeRaw(name string, r *Record) error {
	buf, err := encode(r)
	if err != nil {
		return err
	}
	return atomicWrite(s.rawPath(name), buf)
}

func (s *Store) writeLog(name string, r *Record, state string) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# run_id: %s\n", s.runID)
	fmt.Fprintf(&b, "name: %s\n", name)
	fmt.Fprintf(&b, "state: %s\n", state)
	fmt.Fprintf(&b, "started_at: %s\n", formatTime(r.StartedAt))
	fmt.Fprintf(&b, "crashed_at: %s\n", formatTime(r.CrashedAt))
	fmt.Fprintf(&b, "heartbeat_reset_at: %s\n", formatTime(r.HeartbeatResetAt))
	fmt.Fprintf(&b, "start_count: %d\n", r.StartCount)
	fmt.Fprintf(&b, "crash_count: %d\n", r.CrashCount)
	fmt.Fprintf(&b, "heartbeat_reset_count: %d\n", r.HeartbeatResetCount)
	fmt.Fprintf(&b, "heartbeat_count: %d\n", r.HeartbeatCount)
	fmt.Fprintf(&b, "heartbeat_count_old: %d\n", r.HeartbeatCountOld)
	fmt.Fprintf(&b, "avg_heartbeat_count_old: %.2f\n", r.AvgHeartbeatCountOld)
	fmt.Fprintf(&b, "first_heartbeat_latency_ms: min=%d max=%d avg=%d\n",
		r.FirstHeartbeat.Min.Milliseconds(), r.FirstHeartbeat.Max.Milliseconds(), r.FirstHeartbeat.Avg.Milliseconds())
	fmt.Fprintf(&b, "inter_heartbeat_interval_ms: min=%d max=%d avg=%d\n",
		r.InterHeartbeat.Min.Milliseconds(), r.InterHeartbeat.Max.Milliseconds(), r.InterHeartbeat.Avg.Milliseconds())
	fmt.Fprintf(&b, "cpu_percent: current=%.2f min=%.2f max=%.2f avg=%.2f\n",
		r.CPU.Current, r.CPU.Min, r.CPU.Max, r.CPU.Avg)
	fmt.Fprintf(&b, "rss_kb: current=%d min=%d max=%d avg=%.2f\n",
		r.RSS.Current, r.RSS.Min, r.RSS.Max, r.RSS.Avg)
	fmt.Fprintf(&b, "resource_sample_count: %d\n", r.ResourceSampleCount)

	return atomicWrite(s.logPath(name), b.Bytes())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Format(time.RFC3339)
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
