package domain

import "time"

// Role - per-game player role
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSeller    Role = "seller"
	RoleBidder    Role = "bidder"
	RoleIncumbent Role = "incumbent"
	RoleEntrant   Role = "entrant"
	RoleTrader    Role = "trader"
	RoleOfficer   Role = "officer"
)

// Player - a participant in a session. Valuation doubles as cost for
// seller-type roles. State carries arbitrary per-game persistent data
// (group assignment, village, portfolio).
type Player struct {
	ID        int64          `db:"id" json:"id"`
	SessionID int64          `db:"session_id" json:"session_id"`
	Name      string         `db:"name" json:"name"`
	Role      Role           `db:"role" json:"role"`
	Valuation float64        `db:"valuation" json:"valuation"`
	Profit    float64        `db:"profit" json:"profit"`
	State     map[string]any `db:"state" json:"state,omitempty"`
	Active    bool           `db:"active" json:"active"`
	IsBot     bool           `db:"is_bot" json:"is_bot"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
