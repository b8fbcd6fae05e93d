//go:build windows

package child

import (
	"os"
	"os/exec"
)

// applyOSSpecificSettings has no session/process-group equivalent wired up
// on Windows; grounded on cluster/worker_windows.go, which also leaves this
// as a no-op and relies on TerminateProcess for shutdown.
func applyOSSpecificSettings(cmd *exec.Cmd) {}

// probeAlive approximates the POSIX zero-signal probe: Windows has no
// signal-0 equivalent, so existence is checked by attempting to open the
// process. A running-but-inaccessible process is conservatively reported
// alive, matching the EPERM branch on Unix.
func probeAlive(pid int) probeResult {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return probeNoSuchProcess
	}
	if err := proc.Signal(os.Signal(nil)); err != nil {
		return probePermissionDenied
	}
	return probeAlive_
}

// reapNonBlocking has no waitpid(WNOHANG) equivalent here and nothing calls
// Cmd.Wait, so this always reports "no progress" and lets the existence
// probe decide.
func reapNonBlocking(pid int) bool { return false }

func processExists(pid int) bool {
	return probeAlive(pid) != probeNoSuchProcess
}

func sendTerm(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(os.Interrupt)
}

func sendKill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
