package child

import (
	"testing"

	"github.com/diffstorm/processWatchdog/internal/clock"
)

func TestSpawnAndTerminate(t *testing.T) {
	drv := NewDriver(clock.NewReal())
	c := NewChild(Spec{Name: "sleeper", Command: "/bin/sleep 5"})

	if err := drv.Spawn(c); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if c.PID <= 0 || !c.Started {
		t.Fatalf("expected started child with a pid, got %+v", c)
	}
	if !drv.IsRunning(c) {
		t.Fatalf("expected freshly spawned child to be running")
	}

	if err := drv.Terminate(c); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if c.Started || c.PID != 0 {
		t.Fatalf("expected cleared state after confirmed termination, got %+v", c)
	}
}

func TestIsRunningFalseForZeroPID(t *testing.T) {
	drv := NewDriver(clock.NewReal())
	c := NewChild(Spec{Name: "never-started", Command: "/bin/true"})
	if drv.IsRunning(c) {
		t.Fatalf("a child with pid<=0 must never report running")
	}
}

func TestTerminateNoopForZeroPID(t *testing.T) {
	drv := NewDriver(clock.NewReal())
	c := NewChild(Spec{Name: "never-started", Command: "/bin/true"})
	if err := drv.Terminate(c); err != nil {
		t.Fatalf("Terminate on an unstarted child should be a no-op, got %v", err)
	}
}

func TestSpawnRejectsEmptyCommand(t *testing.T) {
	drv := NewDriver(clock.NewReal())
	c := NewChild(Spec{Name: "blank", Command: "   "})
	if err := drv.Spawn(c); err == nil {
		t.Fatalf("expected SpawnError for a blank command line")
	}
}

func TestRestartSpawnsNewProcess(t *testing.T) {
	drv := NewDriver(clock.NewReal())
	c := NewChild(Spec{Name: "sleeper", Command: "/bin/sleep 5"})

	if err := drv.Spawn(c); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	firstPID := c.PID

	if err := drv.Restart(c); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if c.PID == firstPID {
		t.Errorf("expected a new pid after restart")
	}
	if !drv.IsRunning(c) {
		t.Fatalf("expected restarted child to be running")
	}

	_ = drv.Terminate(c)
}
