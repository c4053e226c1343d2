package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

// Phases shared by the simultaneous-move driver.
const (
	PhaseDecision = "decision"
	PhaseComplete = "complete"
)

// Rules is the game-specific part of a simultaneous-move engine. The
// driver owns submission bookkeeping, duplicate rejection, completion
// detection, default fill and guarded resolution; rules own everything
// economic.
type Rules interface {
	// Setup assigns roles and private values at session start.
	Setup(players []*domain.Player, rng *rand.Rand) error

	// RoundSetup reassigns per-round private values. Mutations are
	// persisted by the driver.
	RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error

	// Validate checks one submission against the player's role and the
	// game's parameter ranges. A nil error accepts the submission.
	Validate(p *domain.Player, a Action) error

	// Default is the decision substituted for a player who never
	// submitted, so rounds always terminate with a complete roster.
	Default(p *domain.Player) Action

	// Payoffs converts a complete decision set into one outcome per
	// player plus a round summary for broadcast.
	Payoffs(players []*domain.Player, decisions map[int64]Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error)
}

type simState struct {
	decisions map[int64]Action
}

// SimGame is the generic round driver for simultaneous-move games: a
// single decision phase that resolves when the submission count reaches
// the active-player count or the round timer fires.
type SimGame struct {
	typ   domain.GameType
	deps  Deps
	sess  *domain.Session
	rng   *rand.Rand
	rules Rules
}

func NewSimGame(typ domain.GameType, deps Deps, sess *domain.Session, rules Rules) *SimGame {
	return &SimGame{
		typ:   typ,
		deps:  deps,
		sess:  sess,
		rng:   NewRand(sess.Config, time.Now().UnixNano()),
		rules: rules,
	}
}

func (g *SimGame) Type() domain.GameType { return g.typ }

// Rand exposes the engine's random source for tests.
func (g *SimGame) Rand() *rand.Rand { return g.rng }

func (g *SimGame) SetupPlayers(ctx context.Context, players []*domain.Player) error {
	if err := g.rules.Setup(players, g.rng); err != nil {
		return err
	}
	for _, p := range players {
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}
	return nil
}

func (g *SimGame) OnRoundStart(ctx context.Context, round *domain.Round) error {
	players, err := g.roster(ctx)
	if err != nil {
		return err
	}
	if err := g.rules.RoundSetup(round, players, g.rng); err != nil {
		return err
	}
	for _, p := range players {
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}

	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	st.Phase = PhaseDecision
	st.Data = &simState{decisions: make(map[int64]Action)}
	st.Unlock()

	// Private values go to each player individually, never broadcast.
	for _, p := range players {
		g.deps.Notifier.Notify(g.sess.ID, notify.Player(p.ID), notify.Event{
			Type: "private",
			Payload: map[string]any{
				"round":     round.Number,
				"role":      p.Role,
				"valuation": p.Valuation,
			},
		})
	}
	return nil
}

func (g *SimGame) HandleAction(ctx context.Context, round *domain.Round, player *domain.Player, a Action) (*ActionResult, error) {
	if round.Status != domain.RoundActive {
		return nil, ErrRoundNotActive
	}
	players, err := g.roster(ctx)
	if err != nil {
		return nil, err
	}

	st, err := g.state(ctx, round)
	if err != nil {
		return nil, err
	}
	st.Lock()
	defer st.Unlock()

	if st.Phase != PhaseDecision {
		return nil, ErrWrongPhase
	}
	sim := st.Data.(*simState)
	if _, dup := sim.decisions[player.ID]; dup {
		return nil, ErrAlreadySubmitted
	}
	if err := g.rules.Validate(player, a); err != nil {
		return nil, err
	}

	// Persist first: a submission is recorded durably or not at all.
	if err := g.deps.Subs.Create(ctx, &domain.Submission{
		RoundID:  round.ID,
		PlayerID: player.ID,
		Kind:     a.Kind,
		Value:    a.Value,
		Data:     a.Data,
	}); err != nil {
		return nil, fmt.Errorf("persist submission: %w", err)
	}
	sim.decisions[player.ID] = a

	total := len(players)
	submitted := len(sim.decisions)
	return &ActionResult{
		Reply: &notify.Event{Type: "accepted", Payload: map[string]any{
			"kind": a.Kind, "round": round.Number,
		}},
		Broadcast: &notify.Event{Type: "progress", Payload: map[string]any{
			"submitted": submitted, "players": total,
		}},
		Complete: submitted >= total,
	}, nil
}

func (g *SimGame) ProcessRoundEnd(ctx context.Context, round *domain.Round) ([]*domain.Outcome, error) {
	st, err := g.state(ctx, round)
	if err != nil {
		return nil, err
	}
	return g.deps.Resolver.Resolve(ctx, st, round, func(ctx context.Context) ([]*domain.Outcome, error) {
		players, err := g.roster(ctx)
		if err != nil {
			return nil, err
		}

		st.Lock()
		sim := st.Data.(*simState)
		decisions := make(map[int64]Action, len(sim.decisions))
		for id, a := range sim.decisions {
			decisions[id] = a
		}
		st.Phase = PhaseComplete
		st.Unlock()

		// Non-participants get the game's default decision so the
		// payoff function always sees a complete roster.
		defaulted := make(map[int64]bool)
		for _, p := range players {
			if _, ok := decisions[p.ID]; !ok {
				decisions[p.ID] = g.rules.Default(p)
				defaulted[p.ID] = true
			}
		}

		outcomes, summary, err := g.rules.Payoffs(players, decisions, g.rng)
		if err != nil {
			return nil, err
		}
		for _, o := range outcomes {
			o.RoundID = round.ID
			if defaulted[o.PlayerID] {
				if o.Details == nil {
					o.Details = map[string]any{}
				}
				o.Details["defaulted"] = true
			}
		}
		if summary != nil {
			g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
				Type:    "round_summary",
				Payload: summary,
			})
		}
		return outcomes, nil
	})
}

func (g *SimGame) GameState(ctx context.Context, round *domain.Round, playerID int64) (map[string]any, error) {
	players, err := g.roster(ctx)
	if err != nil {
		return nil, err
	}

	snap := map[string]any{
		"game_type": string(g.typ),
		"round":     round.Number,
		"status":    string(round.Status),
		"players":   len(players),
	}

	if st, ok := g.deps.State.Get(round.ID); ok {
		st.Lock()
		if sim, valid := st.Data.(*simState); valid {
			snap["phase"] = st.Phase
			snap["submitted"] = len(sim.decisions)
			if playerID > 0 {
				_, mine := sim.decisions[playerID]
				snap["my_submitted"] = mine
			}
		}
		st.Unlock()
	}

	if round.Status == domain.RoundCompleted {
		outcomes, err := g.deps.Outcomes.ListByRound(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		snap["results"] = OutcomeRows(outcomes)
	}
	return snap, nil
}

func (g *SimGame) roster(ctx context.Context) ([]*domain.Player, error) {
	players, err := g.deps.Players.ListBySession(ctx, g.sess.ID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return ActivePlayers(players), nil
}

// state returns the round's ephemeral state, rebuilding the decision
// set from persisted submissions after a process restart.
func (g *SimGame) state(ctx context.Context, round *domain.Round) (*RoundState, error) {
	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	defer st.Unlock()
	if st.Data != nil {
		return st, nil
	}
	st.Phase = PhaseDecision
	sim := &simState{decisions: make(map[int64]Action)}
	subs, err := g.deps.Subs.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("replay submissions: %w", err)
	}
	for _, s := range subs {
		if _, ok := sim.decisions[s.PlayerID]; ok {
			continue // duplicates were rejected; first one stands
		}
		sim.decisions[s.PlayerID] = Action{Kind: s.Kind, Value: s.Value, Data: s.Data}
	}
	st.Data = sim
	return st, nil
}

// OutcomeRows shapes outcomes for client payloads.
func OutcomeRows(outcomes []*domain.Outcome) []map[string]any {
	rows := make([]map[string]any, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, map[string]any{
			"player_id": o.PlayerID,
			"profit":    o.Profit,
			"details":   o.Details,
		})
	}
	return rows
}
