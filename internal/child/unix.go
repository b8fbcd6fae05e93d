//go:build !windows

package child

import (
	"os"
	"os/exec"
	"syscall"
)

// applyOSSpecificSettings detaches the child into a new session so it
// survives the supervisor's controlling terminal going away. The kill
// escalation signals the child's PID only, not its process group.
func applyOSSpecificSettings(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}

// probeAlive sends signal 0 to pid and classifies the result: ESRCH means
// gone, EPERM means alive but owned by someone else, anything else is
// treated as alive and logged by the caller.
func probeAlive(pid int) probeResult {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return probeNoSuchProcess
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return probeAlive_
	}
	switch err {
	case syscall.ESRCH:
		return probeNoSuchProcess
	case syscall.EPERM:
		return probePermissionDenied
	default:
		return probeOtherError
	}
}

// reapNonBlocking performs a single non-blocking waitpid(WNOHANG). It
// returns true if the child was reaped: exited, killed or stopped by a
// signal, or already gone (no child to wait for).
func reapNonBlocking(pid int) bool {
	var ws syscall.WaitStatus
	wpid, err := syscall.Wait4(pid, &ws, syscall.WNOHANG, nil)
	if err == syscall.ECHILD {
		return true
	}
	if err != nil {
		return false
	}
	if wpid == 0 {
		return false
	}
	return ws.Exited() || ws.Signaled() || ws.Stopped()
}

// processExists is a last-resort existence check used after a reap attempt
// that returned "no progress", to decide whether escalation is needed.
func processExists(pid int) bool {
	return probeAlive(pid) != probeNoSuchProcess
}

func sendTerm(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

func sendKill(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}
