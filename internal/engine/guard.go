package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
)

// ErrResolving reports that another caller is resolving the round right
// now. Callers treat it as "someone else is on it" and back off.
var ErrResolving = errors.New("round resolution already in progress")

// Resolver guarantees the payoff-computation-and-persist step runs at
// most once per round, no matter which trigger fires first: the last
// submission completing the set, a timer, an administrator, or a
// delayed duplicate after a restart.
//
// Two layers: an in-memory in-progress token on the RoundState stops
// concurrent triggers, and a durable check against the outcome store
// (performed after the token is held) covers lost tokens from process
// restarts. A persisted set covering the active roster is final; a
// shorter one means an earlier attempt died mid-write, so computation
// runs again and insert-if-absent recording fills the gap. Player
// profit is mutated only for rows actually inserted, so retries never
// double-charge anyone.
type Resolver struct {
	Outcomes OutcomeStore
	Players  PlayerStore
}

func NewResolver(outcomes OutcomeStore, players PlayerStore) *Resolver {
	return &Resolver{Outcomes: outcomes, Players: players}
}

// Resolve returns the round's outcome set, computing and persisting it
// on the first successful call. compute must produce a complete outcome
// set covering every active player (defaults filled in for absentees).
func (r *Resolver) Resolve(ctx context.Context, st *RoundState, round *domain.Round, compute func(ctx context.Context) ([]*domain.Outcome, error)) ([]*domain.Outcome, error) {
	st.mu.Lock()
	if st.outcomes != nil {
		out := st.outcomes
		st.mu.Unlock()
		return out, nil
	}
	if st.resolving {
		st.mu.Unlock()
		ResolutionDuplicates.Inc()
		return nil, ErrResolving
	}
	st.resolving = true
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.resolving = false
		st.mu.Unlock()
	}()

	// The token cannot survive a crash; the durable check can.
	existing, err := r.Outcomes.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("check persisted outcomes: %w", err)
	}
	if len(existing) > 0 {
		players, err := r.Players.ListBySession(ctx, round.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load roster: %w", err)
		}
		if len(existing) >= len(ActivePlayers(players)) {
			st.mu.Lock()
			st.outcomes = existing
			st.mu.Unlock()
			return existing, nil
		}
		// A set shorter than the roster is the residue of a write
		// that failed partway. Fall through and recompute; recording
		// is insert-if-absent, so the rows already persisted stand
		// and only the missing players get written and credited.
	}

	computed, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	for _, o := range computed {
		inserted, err := r.Outcomes.Record(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("record outcome for player %d: %w", o.PlayerID, err)
		}
		if inserted {
			if err := r.Players.AddProfit(ctx, o.PlayerID, o.Profit); err != nil {
				return nil, fmt.Errorf("credit player %d: %w", o.PlayerID, err)
			}
		}
	}

	final := computed
	if len(existing) > 0 {
		// On a backfill the durable rows are authoritative: values
		// from the failed attempt win over any re-randomized
		// recomputation.
		final, err = r.Outcomes.ListByRound(ctx, round.ID)
		if err != nil {
			return nil, fmt.Errorf("reload persisted outcomes: %w", err)
		}
	}

	st.mu.Lock()
	st.outcomes = final
	st.mu.Unlock()
	return final, nil
}
