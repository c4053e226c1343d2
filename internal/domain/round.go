package domain

import "time"

// RoundStatus - lifecycle of a single round
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

// Round - one timed period within a session. Exactly one round is
// active at a time per session.
type Round struct {
	ID        int64       `db:"id" json:"id"`
	SessionID int64       `db:"session_id" json:"session_id"`
	Number    int         `db:"number" json:"number"`
	Status    RoundStatus `db:"status" json:"status"`
	StartedAt *time.Time  `db:"started_at" json:"started_at,omitempty"`
	EndedAt   *time.Time  `db:"ended_at" json:"ended_at,omitempty"`
}
