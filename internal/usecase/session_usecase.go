package usecase

import (
	"guarita/internal/domain/entity"
	"guarita/internal/domain/repository"
)

// SessionUsecase manages the single active workstation session: start,
// countdown with staged warnings, and release. At most one session exists
// at a time.
type SessionUsecase interface {
	// Start activates a session for an authenticated user using the timing
	// configuration in force at this moment. Fails with ErrSessionActive
	// when a session already exists.
	Start(user entity.SessionUser) (*entity.SessionSnapshot, error)

	// Release tears the active session down for the given reason. All
	// triggers funnel through here. Returns false when no session was
	// active; releasing twice is a no-op.
	Release(reason entity.ReleaseReason) bool

	// Snapshot returns a copy of the active session, if any.
	Snapshot() (*entity.SessionSnapshot, bool)

	// Subscribe registers a listener for session lifecycle events, invoked
	// outside internal locks.
	Subscribe(fn func(entity.SessionEvent)) repository.Unsubscribe
}
