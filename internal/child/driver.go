package child

import (
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/diffstorm/processWatchdog/internal/clock"
	"github.com/diffstorm/processWatchdog/internal/logx"
)

// Driver implements spawn/is_running/terminate/restart for one child at a
// time. It is stateless beyond the clock it was built with;
// all mutable state lives on the *Child passed to each call.
type Driver struct {
	clock clock.Clock
}

// NewDriver builds a Driver backed by the given clock (a real clock in
// production, a fake one in tests).
func NewDriver(c clock.Clock) *Driver {
	return &Driver{clock: c}
}

// Spawn forks and execs the child's command line, tokenised on whitespace.
// On success, Started/PID/LastHeartbeatAt are updated so the first-heartbeat
// grace window starts counting from spawn.
func (d *Driver) Spawn(c *Child) error {
	tokens := strings.Fields(c.Spec.Command)
	if len(tokens) == 0 {
		return &SpawnError{Name: c.Spec.Name, Err: os.ErrInvalid}
	}

	cmd := exec.Command(tokens[0], tokens[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	applyOSSpecificSettings(cmd)

	if err := cmd.Start(); err != nil {
		return &SpawnError{Name: c.Spec.Name, Err: err}
	}

	c.cmd = cmd
	c.PID = cmd.Process.Pid
	c.Started = true
	c.FirstHeartbeatReceived = false
	c.LastHeartbeatAt = d.clock.Monotonic()

	logx.Info("child:"+c.Spec.Name, "spawned pid=%d cmd=%q", c.PID, c.Spec.Command)
	return nil
}

// IsRunning implements the "zero-signal" liveness probe. It first performs
// a non-blocking reap so an exited child's slot is
// released (without this, a zero-signal probe against an un-reaped zombie
// would report "running" forever); it then probes with signal 0.
func (d *Driver) IsRunning(c *Child) bool {
	if c.PID <= 0 {
		return false
	}

	if exited := reapNonBlocking(c.PID); exited {
		return false
	}

	switch probeAlive(c.PID) {
	case probeNoSuchProcess:
		return false
	case probePermissionDenied:
		// Conservative: assume running.
		return true
	case probeAlive_:
		return true
	default:
		// Any other error: treat as running and log.
		logx.Warn("child:"+c.Spec.Name, "liveness probe returned an unexpected error for pid %d; assuming running", c.PID)
		return true
	}
}

// Terminate sends a graceful termination request, polls for up to
// MaxWaitTerminationS, and escalates to a forced kill if the deadline
// elapses.
func (d *Driver) Terminate(c *Child) error {
	if c.PID <= 0 {
		return nil
	}

	if err := sendTerm(c.PID); err != nil {
		logx.Warn("child:"+c.Spec.Name, "SIGTERM to pid %d failed: %v", c.PID, err)
	}

	deadline := time.Now().Add(MaxWaitTerminationS * time.Second)
	for time.Now().Before(deadline) {
		if reapNonBlocking(c.PID) || !processExists(c.PID) {
			d.confirmTerminated(c)
			return nil
		}
		time.Sleep(1 * time.Second)
	}

	// Escalate: forced kill, then re-probe once.
	if err := sendKill(c.PID); err != nil {
		logx.Warn("child:"+c.Spec.Name, "SIGKILL to pid %d failed: %v", c.PID, err)
	}
	time.Sleep(200 * time.Millisecond)
	if reapNonBlocking(c.PID) || !processExists(c.PID) {
		d.confirmTerminated(c)
		return nil
	}

	logx.Error("child:"+c.Spec.Name, "termination of pid %d unconfirmed after forced kill", c.PID)
	// Leave Started=true so a subsequent tick retries termination.
	return &TerminateUnconfirmedError{Name: c.Spec.Name, PID: c.PID}
}

func (d *Driver) confirmTerminated(c *Child) {
	logx.Info("child:"+c.Spec.Name, "pid %d terminated", c.PID)
	c.Started = false
	c.FirstHeartbeatReceived = false
	c.PID = 0
	c.cmd = nil
}

// Restart terminates the child if running, spawns it again, and waits up to
// MaxWaitStartS for IsRunning to report true. On success LastHeartbeatAt is
// re-stamped so the first heartbeat gets a full heartbeat_delay window.
func (d *Driver) Restart(c *Child) error {
	if c.Started {
		if err := d.Terminate(c); err != nil {
			return err
		}
	}

	if err := d.Spawn(c); err != nil {
		return err
	}

	deadline := time.Now().Add(MaxWaitStartS * time.Second)
	for time.Now().Before(deadline) {
		if d.IsRunning(c) {
			c.LastHeartbeatAt = d.clock.Monotonic()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
