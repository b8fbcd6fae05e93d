package config

import (
	"github.com/fsnotify/fsnotify"

	"github.com/diffstorm/processWatchdog/internal/logx"
)

// Watcher observes the configuration file for changes and only warns; the
// supervisor never reloads a running config. Live reload stays disabled
// deliberately, not for lack of plumbing.
type Watcher struct {
	fsw *fsnotify.Watcher
}

// NewWatcher creates a Watcher and registers path (the config file) for
// change notifications. The caller must call Start to begin watching.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{fsw: fsw}, nil
}

// Start runs the warn-only event loop in a goroutine until Close is called.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				logx.Warn("config", "%s changed on disk (%s); live reload is not supported, restart the supervisor to apply changes", event.Name, event.Op)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				logx.Warn("config", "watch error: %v", err)
			}
		}
	}()
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
