package ws

import (
	"context"

	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

const (
	// client - server
	MsgAction = "action"
	MsgPing   = "ping"
	MsgState  = "state"

	// server - client
	MsgReady = "ready"
	MsgError = "error"
)

// inbound is the single client-to-server message shape. Kind, Value and
// Data pass through to the game engine untouched.
type inbound struct {
	Type  string         `json:"type"`
	Kind  string         `json:"kind,omitempty"`
	Value float64        `json:"value,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Sink is the orchestration surface the transport needs: route an
// action, build a reconnect snapshot. The session service implements
// it.
type Sink interface {
	HandleAction(ctx context.Context, sessionID, playerID int64, a engine.Action) error
	State(ctx context.Context, sessionID, playerID int64) (map[string]any, error)
}
