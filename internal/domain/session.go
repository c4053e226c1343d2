package domain

import "time"

// GameType - which engine a session runs
type GameType string

const (
	GameTypeDoubleAuction  GameType = "double_auction"
	GameTypeCallMarket     GameType = "call_market"
	GameTypeDiscriminative GameType = "discriminative"
	GameTypeGSP            GameType = "gsp"
	GameTypeSealedAuction  GameType = "sealed_auction"
	GameTypePublicGoods    GameType = "public_goods"
	GameTypeCournot        GameType = "cournot"
	GameTypeCoordination   GameType = "coordination"
	GameTypeMarketEntry    GameType = "market_entry"
	GameTypeHarborTrade    GameType = "harbor_trade"
)

// SessionStatus - lifecycle of an experiment session
type SessionStatus string

const (
	SessionWaiting SessionStatus = "waiting"
	SessionActive  SessionStatus = "active"
	SessionEnded   SessionStatus = "ended"
)

// Config holds game-specific numeric/string/bool parameters.
type Config map[string]any

// Float reads a numeric parameter, falling back to def. JSON decoding
// delivers all numbers as float64, so that is the canonical type.
func (c Config) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

func (c Config) Str(key string, def string) string {
	if v, ok := c[key].(string); ok && v != "" {
		return v
	}
	return def
}

func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

// Session - one experiment instance
type Session struct {
	ID           int64         `db:"id" json:"id"`
	Code         string        `db:"code" json:"code"`
	GameType     GameType      `db:"game_type" json:"game_type"`
	Config       Config        `db:"config" json:"config"`
	NumRounds    int           `db:"num_rounds" json:"num_rounds"`
	RoundSeconds int           `db:"round_seconds" json:"round_seconds"`
	Status       SessionStatus `db:"status" json:"status"`
	CurrentRound int           `db:"current_round" json:"current_round"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// RoundBudget returns the wall-clock budget of one round.
func (s *Session) RoundBudget() time.Duration {
	return time.Duration(s.RoundSeconds) * time.Second
}
