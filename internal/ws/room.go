package ws

import (
	"sync"

	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

// room is the set of live connections for one session. A player may
// hold several connections (a reconnect racing a stale tab); every one
// of them gets addressed events.
type room struct {
	sessionID int64

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func newRoom(sessionID int64) *room {
	return &room{
		sessionID: sessionID,
		clients:   make(map[*Client]struct{}),
	}
}

func (r *room) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *room) remove(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
	return len(r.clients)
}

// deliver fans data out to every connection in the audience. A client
// whose send buffer is full is skipped; it will catch up from a state
// snapshot on reconnect.
func (r *room) deliver(aud notify.Audience, data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.clients {
		if !aud.Contains(c.PlayerID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			wsLog().Warn("send buffer full, dropping event",
				"session_id", r.sessionID, "player_id", c.PlayerID)
		}
	}
}
