// Package notify decouples the game engine from the transport that
// delivers events to clients. The engine addresses an audience; the
// transport decides how to reach it.
package notify

// Audience selects who receives an event: the whole session, one
// player, or a specific set of players.
type Audience struct {
	All       bool
	PlayerIDs []int64
}

func Everyone() Audience {
	return Audience{All: true}
}

func Player(id int64) Audience {
	return Audience{PlayerIDs: []int64{id}}
}

func Players(ids ...int64) Audience {
	return Audience{PlayerIDs: ids}
}

// Contains reports whether the audience includes the given player.
func (a Audience) Contains(playerID int64) bool {
	if a.All {
		return true
	}
	for _, id := range a.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Event is one message delivered to clients.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier delivers events to audiences within a session. The ws hub
// implements it for production; tests use Nop.
type Notifier interface {
	Notify(sessionID int64, aud Audience, ev Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Notify(int64, Audience, Event) {}
