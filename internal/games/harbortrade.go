package games

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

func init() {
	engine.Register(domain.GameTypeHarborTrade, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return NewHarborTrade(deps, sess)
	})
}

// Harbor-trade phases, submission kinds and choices.
const (
	phaseHarborDecision = "decision"
	phaseHarborWatch    = "harbor_watch"

	kindShipping = "shipping"
	kindPatrol   = "patrol"

	choiceShip     = "ship"
	choiceLocal    = "local"
	choiceInspect  = "inspect"
	choiceBlindEye = "blind_eye"
)

// htState tracks shipping choices and the officer's patrol call.
type htState struct {
	officerID int64
	choices   map[int64]string // trader id -> ship/local
	patrol    string           // empty until the officer decides
}

// HarborTrade is a rotating-enforcement game. Each round one player
// serves as the harbor officer while the rest trade. Trading locally is
// safe; shipping through the harbor pays more but exposes the trader to
// the officer, who either inspects the manifests or looks the other way
// for a consideration.
type HarborTrade struct {
	deps engine.Deps
	sess *domain.Session
	rng  *rand.Rand
}

func NewHarborTrade(deps engine.Deps, sess *domain.Session) *HarborTrade {
	return &HarborTrade{
		deps: deps,
		sess: sess,
		rng:  engine.NewRand(sess.Config, time.Now().UnixNano()),
	}
}

func (g *HarborTrade) Type() domain.GameType { return domain.GameTypeHarborTrade }

func (g *HarborTrade) localProfit() float64   { return g.sess.Config.Float("local_profit", 10) }
func (g *HarborTrade) shipProfit() float64    { return g.sess.Config.Float("ship_profit", 30) }
func (g *HarborTrade) fine() float64          { return g.sess.Config.Float("fine", 5) }
func (g *HarborTrade) bribe() float64         { return g.sess.Config.Float("bribe", 5) }
func (g *HarborTrade) inspectReward() float64 { return g.sess.Config.Float("inspect_reward", 8) }
func (g *HarborTrade) officerBase() float64   { return g.sess.Config.Float("officer_base", 10) }

func (g *HarborTrade) watchBudget() time.Duration {
	return g.sess.RoundBudget() / 3
}

func (g *HarborTrade) SetupPlayers(ctx context.Context, players []*domain.Player) error {
	for _, p := range players {
		p.Role = domain.RoleTrader
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}
	return nil
}

// officerFor rotates the officer duty through the roster round-robin.
func (g *HarborTrade) officerFor(round *domain.Round, players []*domain.Player) *domain.Player {
	if len(players) == 0 {
		return nil
	}
	idx := (round.Number - 1) % len(players)
	if idx < 0 {
		idx = 0
	}
	return players[idx]
}

func (g *HarborTrade) OnRoundStart(ctx context.Context, round *domain.Round) error {
	players, err := g.roster(ctx)
	if err != nil {
		return err
	}
	officer := g.officerFor(round, players)
	if officer == nil {
		return fmt.Errorf("session %d has no active players", g.sess.ID)
	}
	for _, p := range players {
		if p.ID == officer.ID {
			p.Role = domain.RoleOfficer
		} else {
			p.Role = domain.RoleTrader
		}
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}

	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	st.Phase = phaseHarborDecision
	st.Data = &htState{
		officerID: officer.ID,
		choices:   make(map[int64]string),
	}
	st.Unlock()

	g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
		Type: "phase",
		Payload: map[string]any{
			"phase":      phaseHarborDecision,
			"round":      round.Number,
			"officer_id": officer.ID,
		},
	})
	return nil
}

func (g *HarborTrade) HandleAction(ctx context.Context, round *domain.Round, player *domain.Player, a engine.Action) (*engine.ActionResult, error) {
	if round.Status != domain.RoundActive {
		return nil, engine.ErrRoundNotActive
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
	ht := st.Data.(*htState)

	switch a.Kind {
	case kindShipping:
		if st.Phase != phaseHarborDecision {
			return nil, engine.ErrWrongPhase
		}
		if player.ID == ht.officerID {
			return nil, engine.ErrWrongRole
		}
		if _, dup := ht.choices[player.ID]; dup {
			return nil, engine.ErrAlreadySubmitted
		}
		choice, _ := a.Data["choice"].(string)
		if choice != choiceShip && choice != choiceLocal {
			return nil, fmt.Errorf("%w: choice must be ship or local", engine.ErrInvalidAction)
		}
		if err := g.persist(ctx, round, player, a); err != nil {
			return nil, err
		}
		ht.choices[player.ID] = choice

		complete := false
		if g.allChosen(ht, players) {
			complete = !g.openWatch(st, round)
		}
		return &engine.ActionResult{
			Reply: &notify.Event{Type: "accepted", Payload: map[string]any{"kind": kindShipping}},
			Broadcast: &notify.Event{Type: "progress", Payload: map[string]any{
				"phase":   st.Phase,
				"decided": len(ht.choices),
				"traders": len(players) - 1,
			}},
			Complete: complete,
		}, nil

	case kindPatrol:
		if st.Phase != phaseHarborWatch {
			return nil, engine.ErrWrongPhase
		}
		if player.ID != ht.officerID {
			return nil, engine.ErrWrongRole
		}
		if ht.patrol != "" {
			return nil, engine.ErrAlreadySubmitted
		}
		choice, _ := a.Data["choice"].(string)
		if choice != choiceInspect && choice != choiceBlindEye {
			return nil, fmt.Errorf("%w: choice must be inspect or blind_eye", engine.ErrInvalidAction)
		}
		if err := g.persist(ctx, round, player, a); err != nil {
			return nil, err
		}
		ht.patrol = choice
		return &engine.ActionResult{
			Reply:    &notify.Event{Type: "accepted", Payload: map[string]any{"kind": kindPatrol}},
			Complete: true,
		}, nil

	default:
		return nil, engine.ErrInvalidAction
	}
}

// openWatch moves into the harbor-watch stage when at least one trader
// shipped, telling the officer how many manifests await. With nothing in
// the harbor the stage is pointless and the round can resolve. Reports
// whether the watch stage opened. Caller holds the state lock.
func (g *HarborTrade) openWatch(st *engine.RoundState, round *domain.Round) bool {
	ht := st.Data.(*htState)
	shippers := 0
	for _, c := range ht.choices {
		if c == choiceShip {
			shippers++
		}
	}
	if shippers == 0 {
		return false
	}
	st.Phase = phaseHarborWatch
	g.deps.Notifier.Notify(g.sess.ID, notify.Player(ht.officerID), notify.Event{
		Type: "harbor_watch",
		Payload: map[string]any{
			"ships": shippers,
		},
	})
	g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
		Type:    "phase",
		Payload: map[string]any{"phase": phaseHarborWatch},
	})

	// An absent officer must not hold the round open forever.
	g.deps.Scheduler.Arm(round.ID, phaseHarborWatch, g.watchBudget(), func() {
		if g.deps.EndRound != nil {
			g.deps.EndRound(round.ID, "timer")
		}
	})
	return true
}

func (g *HarborTrade) persist(ctx context.Context, round *domain.Round, player *domain.Player, a engine.Action) error {
	if err := g.deps.Subs.Create(ctx, &domain.Submission{
		RoundID:  round.ID,
		PlayerID: player.ID,
		Kind:     a.Kind,
		Value:    a.Value,
		Data:     a.Data,
	}); err != nil {
		return fmt.Errorf("persist submission: %w", err)
	}
	return nil
}

func (g *HarborTrade) allChosen(ht *htState, players []*domain.Player) bool {
	for _, p := range players {
		if p.ID == ht.officerID {
			continue
		}
		if _, ok := ht.choices[p.ID]; !ok {
			return false
		}
	}
	return true
}

func (g *HarborTrade) ProcessRoundEnd(ctx context.Context, round *domain.Round) ([]*domain.Outcome, error) {
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
		ht := st.Data.(*htState)
		choices := make(map[int64]string, len(ht.choices))
		for id, c := range ht.choices {
			choices[id] = c
		}
		officerID := ht.officerID
		patrol := ht.patrol
		st.Phase = engine.PhaseComplete
		st.Unlock()
		g.deps.Scheduler.CancelRound(round.ID)

		// Absent traders play it safe; an absent officer waves the
		// harbor through.
		for _, p := range players {
			if p.ID == officerID {
				continue
			}
			if _, ok := choices[p.ID]; !ok {
				choices[p.ID] = choiceLocal
			}
		}
		if patrol == "" {
			patrol = choiceBlindEye
		}

		shippers := 0
		for _, c := range choices {
			if c == choiceShip {
				shippers++
			}
		}

		var outcomes []*domain.Outcome
		for _, p := range players {
			o := &domain.Outcome{RoundID: round.ID, PlayerID: p.ID}
			if p.ID == officerID {
				o.Profit = g.officerBase()
				if shippers > 0 {
					if patrol == choiceInspect {
						o.Profit += g.inspectReward() * float64(shippers)
					} else {
						o.Profit += g.bribe() * float64(shippers)
					}
				}
				o.Details = map[string]any{
					"role":   string(domain.RoleOfficer),
					"patrol": patrol,
					"ships":  shippers,
				}
			} else {
				choice := choices[p.ID]
				switch {
				case choice == choiceLocal:
					o.Profit = g.localProfit()
				case patrol == choiceInspect:
					o.Profit = -g.fine()
				default:
					o.Profit = g.shipProfit() - g.bribe()
				}
				o.Details = map[string]any{
					"role":   string(domain.RoleTrader),
					"choice": choice,
				}
				if choice == choiceShip {
					o.Details["inspected"] = patrol == choiceInspect
				}
			}
			outcomes = append(outcomes, o)
		}

		summary := map[string]any{
			"ships":  shippers,
			"patrol": patrol,
		}
		if shippers == 0 {
			summary["patrol"] = "idle"
		}
		g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
			Type:    "round_summary",
			Payload: summary,
		})
		return outcomes, nil
	})
}

func (g *HarborTrade) GameState(ctx context.Context, round *domain.Round, playerID int64) (map[string]any, error) {
	players, err := g.roster(ctx)
	if err != nil {
		return nil, err
	}
	snap := map[string]any{
		"game_type": string(g.Type()),
		"round":     round.Number,
		"status":    string(round.Status),
		"players":   len(players),
	}

	if st, ok := g.deps.State.Get(round.ID); ok {
		st.Lock()
		if ht, valid := st.Data.(*htState); valid {
			snap["phase"] = st.Phase
			snap["officer_id"] = ht.officerID
			snap["decided"] = len(ht.choices)
			if playerID > 0 && playerID != ht.officerID {
				_, mine := ht.choices[playerID]
				snap["my_submitted"] = mine
			}
			// Only the officer sees how many ships are in the harbor.
			if playerID == ht.officerID && st.Phase == phaseHarborWatch {
				ships := 0
				for _, c := range ht.choices {
					if c == choiceShip {
						ships++
					}
				}
				snap["ships"] = ships
			}
		}
		st.Unlock()
	}

	if round.Status == domain.RoundCompleted {
		outcomes, err := g.deps.Outcomes.ListByRound(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		snap["results"] = engine.OutcomeRows(outcomes)
	}
	return snap, nil
}

func (g *HarborTrade) roster(ctx context.Context) ([]*domain.Player, error) {
	players, err := g.deps.Players.ListBySession(ctx, g.sess.ID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return engine.ActivePlayers(players), nil
}

// state rebuilds choices and the current phase from the submission log.
func (g *HarborTrade) state(ctx context.Context, round *domain.Round) (*engine.RoundState, error) {
	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	defer st.Unlock()
	if st.Data != nil {
		return st, nil
	}

	players, err := g.roster(ctx)
	if err != nil {
		return nil, err
	}
	officer := g.officerFor(round, players)
	if officer == nil {
		return nil, fmt.Errorf("session %d has no active players", g.sess.ID)
	}
	ht := &htState{
		officerID: officer.ID,
		choices:   make(map[int64]string),
	}
	subs, err := g.deps.Subs.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("replay submissions: %w", err)
	}
	for _, s := range subs {
		switch s.Kind {
		case kindShipping:
			if _, ok := ht.choices[s.PlayerID]; ok {
				continue
			}
			if choice, _ := s.Data["choice"].(string); choice != "" {
				ht.choices[s.PlayerID] = choice
			}
		case kindPatrol:
			if ht.patrol == "" {
				ht.patrol, _ = s.Data["choice"].(string)
			}
		}
	}
	st.Data = ht
	shipped := false
	for _, c := range ht.choices {
		if c == choiceShip {
			shipped = true
		}
	}
	if g.allChosen(ht, players) && shipped && ht.patrol == "" {
		st.Phase = phaseHarborWatch
	} else {
		st.Phase = phaseHarborDecision
	}
	return st, nil
}
