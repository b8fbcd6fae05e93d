package supervisor

import (
	"testing"
	"time"

	"github.com/diffstorm/processWatchdog/internal/child"
	"github.com/diffstorm/processWatchdog/internal/clock"
	"github.com/diffstorm/processWatchdog/internal/fscmd"
	"github.com/diffstorm/processWatchdog/internal/reboot"
	"github.com/diffstorm/processWatchdog/internal/resource"
	"github.com/diffstorm/processWatchdog/internal/stats"
	"github.com/diffstorm/processWatchdog/internal/udpcmd"
)

func newTestSupervisor(t *testing.T, specs ...child.Spec) (*Supervisor, *clock.Fake) {
	t.Helper()
	dir := t.TempDir()
	fake := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	s := &Supervisor{
		clock:            fake,
		driver:           child.NewDriver(fake),
		sink:             fscmd.NewSink(dir),
		store:            stats.NewStore(dir),
		sampler:          resource.NewSampler(),
		scheduler:        reboot.NewScheduler(""),
		lastResourceTick: -1,
		lastStatsTick:    -1,
	}
	for _, spec := range specs {
		s.children = append(s.children, &managedChild{
			child: child.NewChild(spec),
			rec:   stats.NewRecord(),
		})
	}
	return s, fake
}

func TestTickChildrenSpawnsOnStartDelay(t *testing.T) {
	spec := child.Spec{Name: "A", Command: "/bin/sleep 2", StartDelayS: 0}
	s, _ := newTestSupervisor(t, spec)

	s.tickChildren(0)

	mc := s.children[0]
	if !mc.child.Started || mc.child.PID <= 0 {
		t.Fatalf("expected child spawned, got started=%v pid=%d", mc.child.Started, mc.child.PID)
	}
	if mc.rec.StartCount != 1 {
		t.Errorf("start_count = %d, want 1", mc.rec.StartCount)
	}

	_ = s.driver.Terminate(mc.child)
}

func TestTickChildrenRespectsStopLatch(t *testing.T) {
	spec := child.Spec{Name: "B", Command: "/bin/sleep 2", StartDelayS: 0}
	s, _ := newTestSupervisor(t, spec)

	if err := s.sink.Create(fscmd.StopFile("B")); err != nil {
		t.Fatalf("create latch: %v", err)
	}

	s.tickChildren(0)

	if s.children[0].child.Started {
		t.Fatalf("child should not spawn while stop<app> latch is present")
	}
}

func TestApplyCommandHeartbeatUpdatesStats(t *testing.T) {
	spec := child.Spec{Name: "C", Command: "/bin/sleep 2", HeartbeatIntervalS: 5}
	s, fake := newTestSupervisor(t, spec)

	mc := s.children[0]
	mc.child.PID = 4242
	mc.child.Started = true
	mc.child.FirstHeartbeatReceived = false

	s.applyCommand(&udpcmd.Command{Type: udpcmd.CmdHeartbeat, PID: 4242})
	if !mc.child.FirstHeartbeatReceived {
		t.Fatalf("expected first heartbeat flag set")
	}
	if mc.rec.FirstHeartbeat.Count == 0 {
		t.Errorf("expected first-heartbeat sample recorded")
	}

	fake.Advance(2 * time.Second)
	s.applyCommand(&udpcmd.Command{Type: udpcmd.CmdHeartbeat, PID: 4242})
	if mc.rec.HeartbeatCount != 1 {
		t.Errorf("heartbeat_count = %d, want 1", mc.rec.HeartbeatCount)
	}
}

func TestApplyCommandIgnoresReservedVerbs(t *testing.T) {
	spec := child.Spec{Name: "D", Command: "/bin/sleep 2"}
	s, _ := newTestSupervisor(t, spec)

	// Should not panic or mutate any child state.
	s.applyCommand(&udpcmd.Command{Type: udpcmd.CmdStartApp, Name: "D"})
	if s.children[0].child.Started {
		t.Fatalf("reserved start verb must have no effect")
	}
}

func TestGlobalExitCodeMapping(t *testing.T) {
	cases := map[fscmd.GlobalCommand]int{
		fscmd.GlobalStop:    0,
		fscmd.GlobalRestart: 2,
		fscmd.GlobalReboot:  3,
	}
	for g, want := range cases {
		if got := globalExitCode(g); got != want {
			t.Errorf("globalExitCode(%v) = %d, want %d", g, got, want)
		}
	}
}

func TestSigCountThreshold(t *testing.T) {
	var sc SigCount
	for i := 0; i < StuckThreshold-1; i++ {
		if sc.Incr() {
			t.Fatalf("should not trip before the %dth repeat", StuckThreshold)
		}
	}
	if !sc.Incr() {
		t.Fatalf("expected trip on the %dth repeat", StuckThreshold)
	}
}
