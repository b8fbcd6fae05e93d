// Package fscmd implements the filesystem command sink: presence-based
// rendezvous files in the supervisor's working directory,
// used as an operator interface. Presence checks are a plain stat
// relative to a root directory; the per-app/global file table and latch
// semantics sit above that.
package fscmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Global rendezvous file names.
const (
	FileWdtStop    = "wdtstop"
	FileWdtRestart = "wdtrestart"
	FileWdtReboot  = "wdtreboot"
)

// GlobalCommand is the effect of observing one of the wdt* files.
type GlobalCommand int

const (
	GlobalNone GlobalCommand = iota
	GlobalStop
	GlobalRestart
	GlobalReboot
)

// Sink checks for rendezvous files under root.
type Sink struct {
	root string
}

// NewSink builds a Sink rooted at dir (the supervisor's working directory).
func NewSink(dir string) *Sink {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &Sink{root: abs}
}

func (s *Sink) resolve(name string) string {
	return filepath.Join(s.root, name)
}

// Exists reports whether the named rendezvous file is present.
func (s *Sink) Exists(name string) bool {
	_, err := os.Stat(s.resolve(name))
	return err == nil
}

// Create creates the named rendezvous file if absent. Production code never
// calls this — rendezvous files are dropped by the operator — but it lets
// tests simulate an operator action without reaching into the filesystem
// layout directly.
func (s *Sink) Create(name string) error {
	f, err := os.OpenFile(s.resolve(name), os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	return f.Close()
}

// Remove deletes the named file; a missing file is not an error. The
// supervisor's create/remove operations are best-effort and idempotent.
func (s *Sink) Remove(name string) error {
	err := os.Remove(s.resolve(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// StartFile, StopFile, RestartFile compose the per-app rendezvous file
// names: lower-cased "<verb><app-name>".
func StartFile(appName string) string   { return "start" + strings.ToLower(appName) }
func StopFile(appName string) string    { return "stop" + strings.ToLower(appName) }
func RestartFile(appName string) string { return "restart" + strings.ToLower(appName) }

// StartRequested reports whether the operator dropped a start<app> file.
func (s *Sink) StartRequested(appName string) bool {
	return s.Exists(StartFile(appName))
}

// StopLatched reports whether the stop<app> latch is present. The latch is
// not removed by the supervisor — only the operator clears it.
func (s *Sink) StopLatched(appName string) bool {
	return s.Exists(StopFile(appName))
}

// RestartRequested reports whether the operator dropped a restart<app> file.
func (s *Sink) RestartRequested(appName string) bool {
	return s.Exists(RestartFile(appName))
}

// ClearStart removes the start<app> file after a successful spawn.
func (s *Sink) ClearStart(appName string) error {
	return s.Remove(StartFile(appName))
}

// ClearRestart removes the restart<app> file after a restart completes.
func (s *Sink) ClearRestart(appName string) error {
	return s.Remove(RestartFile(appName))
}

// PollGlobal checks the three global exit-trigger files, in the fixed
// stop/restart/reboot priority order, removing whichever one it finds.
func (s *Sink) PollGlobal() GlobalCommand {
	if s.Exists(FileWdtStop) {
		_ = s.Remove(FileWdtStop)
		return GlobalStop
	}
	if s.Exists(FileWdtRestart) {
		_ = s.Remove(FileWdtRestart)
		return GlobalRestart
	}
	if s.Exists(FileWdtReboot) {
		_ = s.Remove(FileWdtReboot)
		return GlobalReboot
	}
	return GlobalNone
}
