package domain

import "time"

// Submission kinds shared across engines. Individual games may define
// more; the discriminator is free-form by design.
const (
	SubmissionBid      = "bid"
	SubmissionAsk      = "ask"
	SubmissionDecision = "decision"
	SubmissionCancel   = "cancel"
)

// Submission - an immutable, timestamped record of one player's input
// during one round.
type Submission struct {
	ID        int64          `db:"id" json:"id"`
	RoundID   int64          `db:"round_id" json:"round_id"`
	PlayerID  int64          `db:"player_id" json:"player_id"`
	Kind      string         `db:"kind" json:"kind"`
	Value     float64        `db:"value" json:"value"`
	Data      map[string]any `db:"data" json:"data,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
