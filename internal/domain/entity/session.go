package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReleaseReason records which trigger tore a session down. All triggers
// funnel through the same release path.
type ReleaseReason string

const (
	// ReleaseManual is a user-initiated end of session.
	ReleaseManual ReleaseReason = "manual"
	// ReleaseTimeout is the automatic expiry of the countdown.
	ReleaseTimeout ReleaseReason = "timeout"
	// ReleaseTampered is the forced termination after the kiosk lock file
	// was removed outside the application.
	ReleaseTampered ReleaseReason = "tampered"
	// ReleaseShutdown is the daemon shutting down with a session active.
	ReleaseShutdown ReleaseReason = "shutdown"
)

// SessionEventKind discriminates the events emitted by the session
// lifecycle manager.
type SessionEventKind string

const (
	// EventStarted is emitted when a session becomes active.
	EventStarted SessionEventKind = "started"
	// EventWarning is emitted when a remaining-time threshold is crossed.
	EventWarning SessionEventKind = "warning"
	// EventReleased is emitted when a session ends, for any reason.
	EventReleased SessionEventKind = "released"
)

// SessionEvent is delivered to presentation-layer subscribers.
type SessionEvent struct {
	Kind SessionEventKind `json:"kind"`
	// WarningSeconds is the crossed threshold (remaining seconds) for
	// EventWarning, zero otherwise.
	WarningSeconds int           `json:"warningSeconds,omitempty"`
	Reason         ReleaseReason `json:"reason,omitempty"`
	Snapshot       SessionSnapshot
}

// SessionSnapshot is the read-only view of the active session handed to the
// presentation layer. RemainingSeconds is owned exclusively by the session
// lifecycle manager.
type SessionSnapshot struct {
	ID               uuid.UUID   `json:"id"`
	User             SessionUser `json:"user"`
	StartedAt        time.Time   `json:"startedAt"`
	TotalSeconds     int         `json:"totalSeconds"`
	RemainingSeconds int         `json:"remainingSeconds"`
	WarningSchedule  []int       `json:"warningSchedule"` // seconds, descending
}
