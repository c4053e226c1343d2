package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JoshuaAmmons/econ-games/internal/logger"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

// wsLog is fetched per call so the component logger tracks Init.
func wsLog() *slog.Logger { return logger.Component("ws") }

// Hub tracks one room per session and delivers engine events to the
// right connections. It is the production notify.Notifier.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]*room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[int64]*room)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[c.SessionID]
	if !ok {
		r = newRoom(c.SessionID)
		h.rooms[c.SessionID] = r
	}
	r.add(c)
	wsLog().Info("connected", "session_id", c.SessionID, "player_id", c.PlayerID)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[c.SessionID]
	if !ok {
		return
	}
	if r.remove(c) == 0 {
		delete(h.rooms, c.SessionID)
	}
	wsLog().Info("disconnected", "session_id", c.SessionID, "player_id", c.PlayerID)
}

// Notify implements notify.Notifier. Events for sessions with no open
// connections are dropped; durable state lives in the stores, not here.
func (h *Hub) Notify(sessionID int64, aud notify.Audience, ev notify.Event) {
	h.mu.RLock()
	r, ok := h.rooms[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(map[string]any{
		"type":    ev.Type,
		"payload": ev.Payload,
	})
	if err != nil {
		wsLog().Error("marshal event", "type", ev.Type, "error", err)
		return
	}
	r.deliver(aud, data)
}

// Sessions reports how many sessions currently hold connections.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Clients reports how many connections a session holds.
func (h *Hub) Clients(sessionID int64) int {
	h.mu.RLock()
	r, ok := h.rooms[sessionID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
