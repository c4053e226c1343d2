package games_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/engine/enginetest"

	_ "github.com/JoshuaAmmons/econ-games/internal/games"
)

// fixture runs one game through the registry with in-memory stores, the
// way the session service does in production.
type fixture struct {
	game     engine.Game
	deps     engine.Deps
	sess     *domain.Session
	round    *domain.Round
	roster   []*domain.Player
	notes    *enginetest.Notifier
	subs     *enginetest.SubmissionStore
	outcomes *enginetest.OutcomeStore
}

// start builds a session of n players and opens round 1. RoundSeconds is
// set long enough that no phase timer can fire during a test.
func start(t *testing.T, typ domain.GameType, cfg domain.Config, n int) *fixture {
	t.Helper()
	players, roster := enginetest.Roster(1, n)
	subs := &enginetest.SubmissionStore{}
	outcomes := &enginetest.OutcomeStore{}
	notes := &enginetest.Notifier{}
	deps := enginetest.Deps(players, subs, outcomes, notes)

	if cfg == nil {
		cfg = domain.Config{}
	}
	if _, ok := cfg["seed"]; !ok {
		cfg["seed"] = 7
	}
	sess := &domain.Session{
		ID:           1,
		GameType:     typ,
		Config:       cfg,
		NumRounds:    5,
		RoundSeconds: 3600,
		Status:       domain.SessionActive,
	}

	g, err := engine.New(deps, sess)
	if err != nil {
		t.Fatalf("new %s engine: %v", typ, err)
	}
	ctx := context.Background()
	if err := g.SetupPlayers(ctx, roster); err != nil {
		t.Fatalf("setup players: %v", err)
	}
	round := &domain.Round{ID: 100, SessionID: 1, Number: 1, Status: domain.RoundActive}
	if err := g.OnRoundStart(ctx, round); err != nil {
		t.Fatalf("round start: %v", err)
	}
	return &fixture{
		game:     g,
		deps:     deps,
		sess:     sess,
		round:    round,
		roster:   roster,
		notes:    notes,
		subs:     subs,
		outcomes: outcomes,
	}
}

// act submits one action that must be accepted.
func (f *fixture) act(t *testing.T, p *domain.Player, a engine.Action) *engine.ActionResult {
	t.Helper()
	res, err := f.game.HandleAction(context.Background(), f.round, p, a)
	if err != nil {
		t.Fatalf("action %q by player %d: %v", a.Kind, p.ID, err)
	}
	return res
}

// reject submits one action that must fail with want.
func (f *fixture) reject(t *testing.T, p *domain.Player, a engine.Action, want error) {
	t.Helper()
	if _, err := f.game.HandleAction(context.Background(), f.round, p, a); !errors.Is(err, want) {
		t.Fatalf("action %q by player %d: err = %v, want %v", a.Kind, p.ID, err, want)
	}
}

// endRound resolves the round and indexes the outcomes by player.
func (f *fixture) endRound(t *testing.T) map[int64]*domain.Outcome {
	t.Helper()
	outcomes, err := f.game.ProcessRoundEnd(context.Background(), f.round)
	if err != nil {
		t.Fatalf("round end: %v", err)
	}
	byPlayer := make(map[int64]*domain.Outcome, len(outcomes))
	for _, o := range outcomes {
		byPlayer[o.PlayerID] = o
	}
	for _, p := range f.roster {
		if _, ok := byPlayer[p.ID]; !ok {
			t.Fatalf("no outcome for player %d", p.ID)
		}
	}
	return byPlayer
}

func decision(v float64) engine.Action {
	return engine.Action{Kind: domain.SubmissionDecision, Value: v}
}

func bid(v float64) engine.Action {
	return engine.Action{Kind: domain.SubmissionBid, Value: v}
}

func ask(v float64) engine.Action {
	return engine.Action{Kind: domain.SubmissionAsk, Value: v}
}

func TestRegistryCoversAllGameTypes(t *testing.T) {
	want := []domain.GameType{
		domain.GameTypeDoubleAuction,
		domain.GameTypeCallMarket,
		domain.GameTypeDiscriminative,
		domain.GameTypeGSP,
		domain.GameTypeSealedAuction,
		domain.GameTypePublicGoods,
		domain.GameTypeCournot,
		domain.GameTypeCoordination,
		domain.GameTypeMarketEntry,
		domain.GameTypeHarborTrade,
	}
	registered := make(map[domain.GameType]bool)
	for _, typ := range engine.Types() {
		registered[typ] = true
	}
	for _, typ := range want {
		if !registered[typ] {
			t.Errorf("game type %s not registered", typ)
		}
	}
}
