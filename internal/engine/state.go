package engine

import (
	"sync"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
)

// RoundState is the ephemeral, process-local state of one active round:
// order books, collected decisions, phase trees. It exists only while
// the round is open and is released exactly once, at or after the first
// successful resolution. Data is owned by the game engine for the
// round's game type and must only be touched while holding the lock.
type RoundState struct {
	RoundID int64
	Phase   string
	Data    any

	mu        sync.Mutex
	resolving bool
	outcomes  []*domain.Outcome
}

func (st *RoundState) Lock()   { st.mu.Lock() }
func (st *RoundState) Unlock() { st.mu.Unlock() }

// Arena holds one RoundState per active round, keyed by round id.
// "No entry" means the round was never initialized here or has already
// been resolved and released.
type Arena struct {
	mu     sync.RWMutex
	rounds map[int64]*RoundState
}

func NewArena() *Arena {
	return &Arena{rounds: make(map[int64]*RoundState)}
}

// Get returns the state for a round if it exists.
func (a *Arena) Get(roundID int64) (*RoundState, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st, ok := a.rounds[roundID]
	return st, ok
}

// GetOrCreate returns the state for a round, allocating an empty one if
// needed. Callers initialize Data lazily under the state lock.
func (a *Arena) GetOrCreate(roundID int64) *RoundState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.rounds[roundID]
	if !ok {
		st = &RoundState{RoundID: roundID}
		a.rounds[roundID] = st
	}
	return st
}

// Release drops the round's ephemeral state. Safe to call twice.
func (a *Arena) Release(roundID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.rounds, roundID)
}

// Len reports how many rounds currently hold state.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.rounds)
}
