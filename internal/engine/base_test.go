package engine_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/engine/enginetest"
)

// doubleRules pays each player twice their submitted value. Minimal
// rules implementation for exercising the driver.
type doubleRules struct{}

func (doubleRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleBidder
	}
	return nil
}

func (doubleRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	return nil
}

func (doubleRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionDecision || a.Value < 0 {
		return engine.ErrInvalidAction
	}
	return nil
}

func (doubleRules) Default(p *domain.Player) engine.Action {
	return engine.Action{Kind: domain.SubmissionDecision, Value: 0}
}

func (doubleRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	var out []*domain.Outcome
	for _, p := range players {
		out = append(out, &domain.Outcome{
			PlayerID: p.ID,
			Profit:   decisions[p.ID].Value * 2,
			Details:  map[string]any{"decision": decisions[p.ID].Value},
		})
	}
	return out, map[string]any{"n": len(players)}, nil
}

func simFixture(t *testing.T, n int) (*engine.SimGame, engine.Deps, *domain.Round, []*domain.Player) {
	t.Helper()
	players, roster := enginetest.Roster(1, n)
	subs := &enginetest.SubmissionStore{}
	outcomes := &enginetest.OutcomeStore{}
	deps := enginetest.Deps(players, subs, outcomes, nil)
	sess := &domain.Session{ID: 1, GameType: "test", Config: domain.Config{"seed": 42}, NumRounds: 1}
	g := engine.NewSimGame("test", deps, sess, doubleRules{})
	round := &domain.Round{ID: 10, SessionID: 1, Number: 1, Status: domain.RoundActive}
	if err := g.OnRoundStart(context.Background(), round); err != nil {
		t.Fatalf("round start: %v", err)
	}
	return g, deps, round, roster
}

func TestSimGameCompletesOnLastSubmission(t *testing.T) {
	g, _, round, roster := simFixture(t, 3)
	ctx := context.Background()

	for i, p := range roster {
		res, err := g.HandleAction(ctx, round, p, engine.Action{Kind: "decision", Value: float64(i + 1)})
		if err != nil {
			t.Fatalf("action for player %d: %v", p.ID, err)
		}
		wantComplete := i == len(roster)-1
		if res.Complete != wantComplete {
			t.Errorf("player %d: complete = %v, want %v", p.ID, res.Complete, wantComplete)
		}
	}
}

func TestSimGameRejectsDuplicateAndInvalid(t *testing.T) {
	g, _, round, roster := simFixture(t, 2)
	ctx := context.Background()

	if _, err := g.HandleAction(ctx, round, roster[0], engine.Action{Kind: "decision", Value: 5}); err != nil {
		t.Fatalf("first action: %v", err)
	}
	if _, err := g.HandleAction(ctx, round, roster[0], engine.Action{Kind: "decision", Value: 6}); err != engine.ErrAlreadySubmitted {
		t.Errorf("duplicate: err = %v, want ErrAlreadySubmitted", err)
	}
	if _, err := g.HandleAction(ctx, round, roster[1], engine.Action{Kind: "decision", Value: -1}); err != engine.ErrInvalidAction {
		t.Errorf("invalid: err = %v, want ErrInvalidAction", err)
	}

	// A rejected submission mutates nothing: the roster can still
	// complete normally.
	res, err := g.HandleAction(ctx, round, roster[1], engine.Action{Kind: "decision", Value: 3})
	if err != nil {
		t.Fatalf("valid retry: %v", err)
	}
	if !res.Complete {
		t.Error("round should complete after valid retry")
	}
}

func TestSimGameDefaultsForAbsentPlayers(t *testing.T) {
	g, _, round, roster := simFixture(t, 3)
	ctx := context.Background()

	// Only one of three players submits before the timer forces the end.
	if _, err := g.HandleAction(ctx, round, roster[0], engine.Action{Kind: "decision", Value: 4}); err != nil {
		t.Fatalf("action: %v", err)
	}
	outcomes, err := g.ProcessRoundEnd(ctx, round)
	if err != nil {
		t.Fatalf("round end: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcome set has %d rows, want one per player", len(outcomes))
	}
	byPlayer := map[int64]*domain.Outcome{}
	for _, o := range outcomes {
		byPlayer[o.PlayerID] = o
	}
	if byPlayer[1].Profit != 8 {
		t.Errorf("submitter profit = %v, want 8", byPlayer[1].Profit)
	}
	for _, id := range []int64{2, 3} {
		o := byPlayer[id]
		if o.Profit != 0 {
			t.Errorf("absent player %d profit = %v, want default 0", id, o.Profit)
		}
		if o.Details["defaulted"] != true {
			t.Errorf("absent player %d not marked defaulted", id)
		}
	}
}

func TestSimGameRoundEndIdempotent(t *testing.T) {
	g, _, round, roster := simFixture(t, 2)
	ctx := context.Background()
	for _, p := range roster {
		if _, err := g.HandleAction(ctx, round, p, engine.Action{Kind: "decision", Value: 1}); err != nil {
			t.Fatalf("action: %v", err)
		}
	}
	first, err := g.ProcessRoundEnd(ctx, round)
	if err != nil {
		t.Fatalf("first end: %v", err)
	}
	profitAfter := roster[0].Profit

	second, err := g.ProcessRoundEnd(ctx, round)
	if err != nil {
		t.Fatalf("second end: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("second end returned %d rows, want %d", len(second), len(first))
	}
	if roster[0].Profit != profitAfter {
		t.Errorf("profit changed on replay: %v -> %v", profitAfter, roster[0].Profit)
	}
}

func TestSimGameRebuildsFromSubmissions(t *testing.T) {
	g, deps, round, roster := simFixture(t, 2)
	ctx := context.Background()
	for _, p := range roster {
		if _, err := g.HandleAction(ctx, round, p, engine.Action{Kind: "decision", Value: 2}); err != nil {
			t.Fatalf("action: %v", err)
		}
	}

	// Drop the ephemeral state, as a process restart would.
	deps.State.Release(round.ID)

	outcomes, err := g.ProcessRoundEnd(ctx, round)
	if err != nil {
		t.Fatalf("round end after restart: %v", err)
	}
	for _, o := range outcomes {
		if o.Profit != 4 {
			t.Errorf("player %d profit = %v after replay, want 4", o.PlayerID, o.Profit)
		}
		if o.Details["defaulted"] == true {
			t.Errorf("player %d wrongly defaulted after replay", o.PlayerID)
		}
	}
}

func TestSimGameRejectsActionsOnInactiveRound(t *testing.T) {
	g, _, _, roster := simFixture(t, 2)
	done := &domain.Round{ID: 11, SessionID: 1, Number: 2, Status: domain.RoundCompleted}
	if _, err := g.HandleAction(context.Background(), done, roster[0], engine.Action{Kind: "decision", Value: 1}); err != engine.ErrRoundNotActive {
		t.Errorf("err = %v, want ErrRoundNotActive", err)
	}
}
