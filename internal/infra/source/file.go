// Package source provides repository.Source implementations: a file-backed
// source watched through koanf's file provider, and an in-memory source used
// to exercise the stores without touching the filesystem.
package source

import (
	"io/fs"
	"sync"

	"guarita/internal/domain/repository"

	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

// File is a repository.Source backed by a single file on disk.
type File struct {
	path string
}

var _ repository.Source = (*File)(nil)

// NewFile creates a file-backed source for the given path. The file does not
// need to exist yet; Load reports absence as repository.ErrSourceNotFound.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the watched file path.
func (f *File) Path() string {
	return f.path
}

// Load performs a synchronous full read of the file.
func (f *File) Load() ([]byte, error) {
	payload, err := file.Provider(f.path).ReadBytes()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(repository.ErrSourceNotFound, f.path)
		}

		return nil, errors.Wrapf(err, "read %s", f.path)
	}

	return payload, nil
}

// Watch subscribes to filesystem change notifications. Notifications carry
// no payload; callers re-run Load and handle its outcome. Watch events that
// themselves carry an error still notify, so the caller reloads and surfaces
// the failure through its own load path.
func (f *File) Watch(onChange func()) (repository.Unsubscribe, error) {
	provider := file.Provider(f.path)
	if err := provider.Watch(func(_ interface{}, _ error) {
		onChange()
	}); err != nil {
		return nil, errors.Wrapf(err, "watch %s", f.path)
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			_ = provider.Unwatch()
		})
	}, nil
}
