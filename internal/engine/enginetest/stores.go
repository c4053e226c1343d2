// Package enginetest provides in-memory store fakes for engine and
// game tests. They honor the same contracts as the pgx repositories,
// including insert-if-absent outcome recording.
package enginetest

import (
	"context"
	"sync"
	"time"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

type SubmissionStore struct {
	mu     sync.Mutex
	nextID int64
	Subs   []*domain.Submission
	Err    error
}

func (s *SubmissionStore) Create(ctx context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	sub.ID = s.nextID
	sub.CreatedAt = time.Now()
	cp := *sub
	s.Subs = append(s.Subs, &cp)
	return nil
}

func (s *SubmissionStore) ListByRound(ctx context.Context, roundID int64) ([]*domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Submission
	for _, sub := range s.Subs {
		if sub.RoundID == roundID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

type OutcomeStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]map[int64]*domain.Outcome
	Records int // total Record calls that inserted
	Err     error
}

func (s *OutcomeStore) Record(ctx context.Context, o *domain.Outcome) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if s.rows == nil {
		s.rows = make(map[int64]map[int64]*domain.Outcome)
	}
	byPlayer := s.rows[o.RoundID]
	if byPlayer == nil {
		byPlayer = make(map[int64]*domain.Outcome)
		s.rows[o.RoundID] = byPlayer
	}
	if _, exists := byPlayer[o.PlayerID]; exists {
		return false, nil
	}
	s.nextID++
	o.ID = s.nextID
	o.CreatedAt = time.Now()
	cp := *o
	byPlayer[o.PlayerID] = &cp
	s.Records++
	return true, nil
}

func (s *OutcomeStore) ListByRound(ctx context.Context, roundID int64) ([]*domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Outcome
	for _, o := range s.rows[roundID] {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

type PlayerStore struct {
	mu      sync.Mutex
	Players []*domain.Player
}

func (s *PlayerStore) Add(p *domain.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Players = append(s.Players, p)
}

func (s *PlayerStore) ListBySession(ctx context.Context, sessionID int64) ([]*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Player
	for _, p := range s.Players {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PlayerStore) Update(ctx context.Context, p *domain.Player) error {
	return nil // players are shared pointers in tests
}

func (s *PlayerStore) AddProfit(ctx context.Context, playerID int64, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Players {
		if p.ID == playerID {
			p.Profit += delta
			return nil
		}
	}
	return nil
}

// Notifier records every event it is asked to deliver.
type Notifier struct {
	mu     sync.Mutex
	Events []Delivery
}

type Delivery struct {
	SessionID int64
	Audience  notify.Audience
	Event     notify.Event
}

func (n *Notifier) Notify(sessionID int64, aud notify.Audience, ev notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, Delivery{SessionID: sessionID, Audience: aud, Event: ev})
}

// ByType returns the recorded events of one type.
func (n *Notifier) ByType(t string) []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Delivery
	for _, d := range n.Events {
		if d.Event.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// Deps wires fakes into an engine.Deps ready for tests.
func Deps(players *PlayerStore, subs *SubmissionStore, outcomes *OutcomeStore, n notify.Notifier) engine.Deps {
	if n == nil {
		n = notify.Nop{}
	}
	return engine.Deps{
		State:     engine.NewArena(),
		Resolver:  engine.NewResolver(outcomes, players),
		Scheduler: engine.NewScheduler(),
		Subs:      subs,
		Players:   players,
		Outcomes:  outcomes,
		Notifier:  n,
	}
}

// Roster builds n active players for a session, ids 1..n.
func Roster(sessionID int64, n int) (*PlayerStore, []*domain.Player) {
	store := &PlayerStore{}
	var players []*domain.Player
	for i := 1; i <= n; i++ {
		p := &domain.Player{
			ID:        int64(i),
			SessionID: sessionID,
			Name:      "player",
			Active:    true,
		}
		store.Add(p)
		players = append(players, p)
	}
	return store, players
}
