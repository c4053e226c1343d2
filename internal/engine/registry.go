package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
)

// Factory builds one engine instance for one session.
type Factory func(deps Deps, sess *domain.Session) Game

var (
	registryMu sync.RWMutex
	registry   = make(map[domain.GameType]Factory)
)

// Register installs a factory for a game type. Game packages call it
// from init-style registration; a duplicate registration panics.
func Register(t domain.GameType, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("engine: duplicate registration for %q", t))
	}
	registry[t] = f
}

// New dispatches a session's configured game type to its engine.
func New(deps Deps, sess *domain.Session) (Game, error) {
	registryMu.RLock()
	f, ok := registry[sess.GameType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown game type: %s", sess.GameType)
	}
	return f(deps, sess), nil
}

// Types lists the registered game types in stable order.
func Types() []domain.GameType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]domain.GameType, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
