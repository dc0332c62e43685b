package source

import (
	"sync"

	"guarita/internal/domain/repository"

	"github.com/pkg/errors"
)

// Memory is an in-memory repository.Source. It backs the store tests and
// any deployment that feeds configuration from somewhere other than disk.
type Memory struct {
	mu       sync.Mutex
	payload  []byte
	absent   bool
	loadErr  error
	watchers map[int]func()
	nextID   int
}

var _ repository.Source = (*Memory)(nil)

// NewMemory creates an in-memory source with the given initial payload.
func NewMemory(payload []byte) *Memory {
	return &Memory{
		payload:  payload,
		watchers: make(map[int]func()),
	}
}

// Load returns the current payload, the configured error, or
// repository.ErrSourceNotFound when the source is marked absent.
func (m *Memory) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.absent {
		return nil, errors.Wrap(repository.ErrSourceNotFound, "memory source")
	}

	payload := make([]byte, len(m.payload))
	copy(payload, m.payload)

	return payload, nil
}

// Watch registers a change callback.
func (m *Memory) Watch(onChange func()) (repository.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.watchers[id] = onChange

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}, nil
}

// WatcherCount reports the number of live watch registrations.
func (m *Memory) WatcherCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.watchers)
}

// Set replaces the payload and notifies watchers.
func (m *Memory) Set(payload []byte) {
	m.mu.Lock()
	m.payload = payload
	m.absent = false
	m.loadErr = nil
	m.mu.Unlock()

	m.Notify()
}

// SetAbsent marks the source as missing and notifies watchers.
func (m *Memory) SetAbsent() {
	m.mu.Lock()
	m.absent = true
	m.mu.Unlock()

	m.Notify()
}

// SetError makes subsequent loads fail with err and notifies watchers.
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()

	m.Notify()
}

// Notify fires every registered watcher without changing the payload.
func (m *Memory) Notify() {
	m.mu.Lock()
	watchers := make([]func(), 0, len(m.watchers))
	for _, w := range m.watchers {
		watchers = append(watchers, w)
	}
	m.mu.Unlock()

	for _, w := range watchers {
		w()
	}
}
