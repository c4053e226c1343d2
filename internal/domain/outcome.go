package domain

import "time"

// Outcome - one row per (round, player): monetary profit plus a
// structured explanation (prices, quantities, matched counterpart).
// Immutable once written; at most one exists per (round, player) pair.
type Outcome struct {
	ID        int64          `db:"id" json:"id"`
	RoundID   int64          `db:"round_id" json:"round_id"`
	PlayerID  int64          `db:"player_id" json:"player_id"`
	Profit    float64        `db:"profit" json:"profit"`
	Details   map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
