package engine

import (
	"context"
	"errors"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

// Validation failures reported back to the submitting player.
var (
	ErrWrongPhase       = errors.New("action not valid in current phase")
	ErrWrongRole        = errors.New("action not valid for your role")
	ErrAlreadySubmitted = errors.New("already submitted this round")
	ErrInvalidAction    = errors.New("invalid action")
	ErrRoundNotActive   = errors.New("round is not active")
)

// Action is one player input, delivered by the transport as an opaque
// game-specific record.
type Action struct {
	Kind  string         `json:"kind"`
	Value float64        `json:"value"`
	Data  map[string]any `json:"data,omitempty"`
}

// ActionResult is what HandleAction hands back to the caller. Reply goes
// to the submitting player only, Broadcast to the whole session.
// Complete signals that the round has everything it needs and should be
// resolved now.
type ActionResult struct {
	Reply     *notify.Event
	Broadcast *notify.Event
	Complete  bool
}

// Game is the contract every game type implements.
//
// HandleAction never partially applies a submission. ProcessRoundEnd is
// safe to call multiple times and from multiple call sites, and returns
// the same outcomes after the first successful run.
type Game interface {
	Type() domain.GameType

	// SetupPlayers assigns roles and private values once, when the
	// session starts. Mutated players are persisted by the engine.
	SetupPlayers(ctx context.Context, players []*domain.Player) error

	// OnRoundStart reassigns per-round private values, initializes
	// ephemeral round state and arms phase timers.
	OnRoundStart(ctx context.Context, round *domain.Round) error

	// HandleAction validates and records one submission.
	HandleAction(ctx context.Context, round *domain.Round, player *domain.Player, a Action) (*ActionResult, error)

	// ProcessRoundEnd guarantees a terminal resolution has occurred and
	// returns the final per-player outcomes.
	ProcessRoundEnd(ctx context.Context, round *domain.Round) ([]*domain.Outcome, error)

	// GameState reconstructs a snapshot for a (re)connecting client.
	// playerID 0 requests the observer view.
	GameState(ctx context.Context, round *domain.Round, playerID int64) (map[string]any, error)
}

// SubmissionStore persists immutable player submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *domain.Submission) error
	ListByRound(ctx context.Context, roundID int64) ([]*domain.Submission, error)
}

// OutcomeStore persists per-player round outcomes. Record inserts only
// if no outcome exists for the (round, player) pair and reports whether
// the row was inserted.
type OutcomeStore interface {
	Record(ctx context.Context, o *domain.Outcome) (bool, error)
	ListByRound(ctx context.Context, roundID int64) ([]*domain.Outcome, error)
}

// PlayerStore reads and updates the session roster.
type PlayerStore interface {
	ListBySession(ctx context.Context, sessionID int64) ([]*domain.Player, error)
	Update(ctx context.Context, p *domain.Player) error
	AddProfit(ctx context.Context, playerID int64, delta float64) error
}

// Deps carries everything a game engine needs from the outer system.
// EndRound is how engine-armed phase timers force a round resolution;
// the orchestration layer wires it after construction.
type Deps struct {
	State     *Arena
	Resolver  *Resolver
	Scheduler *Scheduler
	Subs      SubmissionStore
	Players   PlayerStore
	Outcomes  OutcomeStore
	Notifier  notify.Notifier
	EndRound  func(roundID int64, trigger string)
}

// ActivePlayers filters the roster down to active participants.
func ActivePlayers(players []*domain.Player) []*domain.Player {
	var out []*domain.Player
	for _, p := range players {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// NewRand builds the random source for one engine instance. Sessions
// may pin a seed in their config for reproducible experiments.
func NewRand(cfg domain.Config, fallbackSeed int64) *rand.Rand {
	seed := int64(cfg.Int("seed", 0))
	if seed == 0 {
		seed = fallbackSeed
	}
	return rand.New(rand.NewSource(seed))
}
