package entity

import "time"

// SessionRecord is one completed workstation session as kept in the audit
// trail.
type SessionRecord struct {
	ID              string        `json:"id"`
	UserName        string        `json:"userName"`
	Role            Role          `json:"role"`
	StartedAt       time.Time     `json:"startedAt"`
	EndedAt         time.Time     `json:"endedAt"`
	Reason          ReleaseReason `json:"reason"`
	DurationSeconds int           `json:"durationSeconds"`
}
