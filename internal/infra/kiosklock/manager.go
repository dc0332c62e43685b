// Package kiosklock manages the lock file that keeps the workstation in
// kiosk mode. The file is created when kiosk mode is enabled and removed to
// disable it; removal behind the daemon's back is treated as tampering.
package kiosklock

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"guarita/internal/domain/repository"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// LockFileName is the conventional name of the kiosk lock file.
const LockFileName = ".quiosque-lock"

const appName = "guarita"

// Info is the content of the lock file.
type Info struct {
	Created time.Time `json:"created"`
	App     string    `json:"app"`
	PID     int       `json:"pid"`
}

// Manager creates, removes and watches the kiosk lock file.
type Manager struct {
	path   string
	logger *slog.Logger
}

// NewManager creates a lock manager for the given lock-file path.
func NewManager(path string, logger *slog.Logger) *Manager {
	return &Manager{path: path, logger: logger}
}

// Path returns the lock-file path.
func (m *Manager) Path() string {
	return m.path
}

// Enable writes the lock file, creating its directory when needed.
func (m *Manager) Enable() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.Wrap(err, "create kiosk dir")
	}

	payload, err := json.Marshal(Info{
		Created: time.Now().UTC(),
		App:     appName,
		PID:     os.Getpid(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := os.WriteFile(m.path, payload, 0o644); err != nil {
		return errors.Wrap(err, "write kiosk lock file")
	}
	m.logger.Info("Kiosk lock file created", slog.String("path", m.path))

	return nil
}

// Disable removes the lock file. Returns false without error when the file
// was already gone.
func (m *Manager) Disable() (bool, error) {
	err := os.Remove(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, errors.Wrap(err, "remove kiosk lock file")
	}
	m.logger.Info("Kiosk lock file removed", slog.String("path", m.path))

	return true, nil
}

// Enabled reports whether the lock file exists.
func (m *Manager) Enabled() bool {
	_, err := os.Stat(m.path)

	return err == nil
}

// Info reads the lock file content. Returns nil when the file is absent or
// unreadable; a lock file with garbage content still counts as enabled.
func (m *Manager) Info() *Info {
	payload, err := os.ReadFile(m.path)
	if err != nil {
		return nil
	}

	var info Info
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil
	}

	return &info
}

// Watch reports removal of the lock file. onRemoved runs once per removal
// event; the caller decides what a removal means (during an active session
// it is a tamper signal that force-releases the workstation).
func (m *Manager) Watch(onRemoved func()) (repository.Unsubscribe, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create lock watcher")
	}

	// Watch the directory: watching the file itself stops working the
	// moment it is removed.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		_ = watcher.Close()

		return nil, errors.Wrap(err, "watch kiosk dir")
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.path {
					continue
				}
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					m.logger.Warn("Kiosk lock file removed externally", slog.String("path", m.path))
					onRemoved()
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Error("Kiosk lock watcher error", slog.Any("error", watchErr))
			}
		}
	}()

	return func() {
		_ = watcher.Close()
	}, nil
}
