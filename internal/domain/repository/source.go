// Package repository declares the persistence-facing interfaces consumed by
// the domain. Implementations live under internal/infra.
package repository

import "github.com/pkg/errors"

// ErrSourceNotFound is returned by Load when the underlying source does not
// exist. Callers decide whether absence is an error; for the app-config
// store it is not.
var ErrSourceNotFound = errors.New("source not found")

// Unsubscribe cancels a watch registration. Safe to call more than once.
type Unsubscribe func()

// Source is a readable, watchable byte-stream: the registry file and the
// app-config file are both one of these. Watch notifications carry no
// payload; every notification triggers a full reload, never an incremental
// diff. The abstraction exists so the core logic is testable with an
// in-memory fake.
type Source interface {
	// Load performs a synchronous full read of the source.
	Load() ([]byte, error)
	// Watch subscribes to change notifications. The returned Unsubscribe
	// must be invoked to release the watcher.
	Watch(onChange func()) (Unsubscribe, error)
}
