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
	engine.Register(domain.GameTypeMarketEntry, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return NewMarketEntry(deps, sess)
	})
}

// Market-entry phases and submission kinds.
const (
	phaseEntry   = "entry"
	phasePosting = "posting"

	kindEntry = "entry"
	kindPrice = "price"
)

// meState tracks who has committed to the market and what they charge.
type meState struct {
	entered  map[int64]bool // entry decision recorded
	inMarket map[int64]bool
	prices   map[int64]float64
}

// MarketEntry is a two-stage entry game. One incumbent is always in the
// market; entrants first decide whether to pay the entry cost, then all
// in-market firms post prices. Demand goes to the cheapest firm, split
// evenly on ties.
type MarketEntry struct {
	deps engine.Deps
	sess *domain.Session
	rng  *rand.Rand
}

func NewMarketEntry(deps engine.Deps, sess *domain.Session) *MarketEntry {
	return &MarketEntry{
		deps: deps,
		sess: sess,
		rng:  engine.NewRand(sess.Config, time.Now().UnixNano()),
	}
}

func (g *MarketEntry) Type() domain.GameType { return domain.GameTypeMarketEntry }

func (g *MarketEntry) entryCost() float64 { return g.sess.Config.Float("entry_cost", 10) }
func (g *MarketEntry) demand() float64    { return g.sess.Config.Float("demand", 60) }
func (g *MarketEntry) unitCost() float64  { return g.sess.Config.Float("unit_cost", 10) }
func (g *MarketEntry) maxPrice() float64  { return g.sess.Config.Float("max_price", 100) }
func (g *MarketEntry) outside() float64   { return g.sess.Config.Float("outside_option", 5) }

// entryBudget is the slice of the round clock reserved for the entry
// stage before undecided entrants are defaulted to staying out.
func (g *MarketEntry) entryBudget() time.Duration {
	return g.sess.RoundBudget() / 3
}

func (g *MarketEntry) SetupPlayers(ctx context.Context, players []*domain.Player) error {
	for i, p := range players {
		if i == 0 {
			p.Role = domain.RoleIncumbent
		} else {
			p.Role = domain.RoleEntrant
		}
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}
	return nil
}

func (g *MarketEntry) OnRoundStart(ctx context.Context, round *domain.Round) error {
	players, err := g.roster(ctx)
	if err != nil {
		return err
	}

	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	st.Phase = phaseEntry
	me := newMEState()
	for _, p := range players {
		if p.Role == domain.RoleIncumbent {
			me.inMarket[p.ID] = true
		}
	}
	st.Data = me
	st.Unlock()

	g.armEntryTimer(round)

	for _, p := range players {
		g.deps.Notifier.Notify(g.sess.ID, notify.Player(p.ID), notify.Event{
			Type: "private",
			Payload: map[string]any{
				"round":      round.Number,
				"role":       p.Role,
				"entry_cost": g.entryCost(),
				"unit_cost":  g.unitCost(),
			},
		})
	}
	return nil
}

// armEntryTimer closes the entry stage after its time slice so a single
// idle entrant cannot stall the round.
func (g *MarketEntry) armEntryTimer(round *domain.Round) {
	g.deps.Scheduler.Arm(round.ID, phaseEntry, g.entryBudget(), func() {
		st, ok := g.deps.State.Get(round.ID)
		if !ok {
			return
		}
		ctx := context.Background()
		players, err := g.roster(ctx)
		if err != nil {
			return
		}
		st.Lock()
		if st.Phase == phaseEntry {
			me := st.Data.(*meState)
			for _, p := range players {
				if p.Role == domain.RoleEntrant && !me.entered[p.ID] {
					me.entered[p.ID] = true // defaulted to staying out
				}
			}
			g.openPosting(st)
		}
		st.Unlock()
	})
}

// openPosting flips the round into the posting stage. Caller holds the
// state lock.
func (g *MarketEntry) openPosting(st *engine.RoundState) {
	st.Phase = phasePosting
	g.deps.Scheduler.Cancel(st.RoundID, phaseEntry)
	me := st.Data.(*meState)
	g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
		Type: "phase",
		Payload: map[string]any{
			"phase": phasePosting,
			"firms": len(me.inMarket),
		},
	})
}

func (g *MarketEntry) HandleAction(ctx context.Context, round *domain.Round, player *domain.Player, a engine.Action) (*engine.ActionResult, error) {
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
	me := st.Data.(*meState)

	switch a.Kind {
	case kindEntry:
		if st.Phase != phaseEntry {
			return nil, engine.ErrWrongPhase
		}
		if player.Role != domain.RoleEntrant {
			return nil, engine.ErrWrongRole
		}
		if me.entered[player.ID] {
			return nil, engine.ErrAlreadySubmitted
		}
		choice, _ := a.Data["choice"].(string)
		if choice != "enter" && choice != "stay_out" {
			return nil, fmt.Errorf("%w: choice must be enter or stay_out", engine.ErrInvalidAction)
		}
		if err := g.persist(ctx, round, player, a); err != nil {
			return nil, err
		}
		me.entered[player.ID] = true
		if choice == "enter" {
			me.inMarket[player.ID] = true
		}
		if g.allDecided(me, players) {
			g.openPosting(st)
		}
		return &engine.ActionResult{
			Reply: &notify.Event{Type: "accepted", Payload: map[string]any{"kind": kindEntry}},
			Broadcast: &notify.Event{Type: "progress", Payload: map[string]any{
				"phase":   st.Phase,
				"decided": len(me.entered),
			}},
		}, nil

	case kindPrice:
		if st.Phase != phasePosting {
			return nil, engine.ErrWrongPhase
		}
		if !me.inMarket[player.ID] {
			return nil, engine.ErrWrongRole
		}
		if _, dup := me.prices[player.ID]; dup {
			return nil, engine.ErrAlreadySubmitted
		}
		if a.Value < 0 || a.Value > g.maxPrice() {
			return nil, fmt.Errorf("%w: price must be between 0 and %v", engine.ErrInvalidAction, g.maxPrice())
		}
		if err := g.persist(ctx, round, player, a); err != nil {
			return nil, err
		}
		me.prices[player.ID] = a.Value
		return &engine.ActionResult{
			Reply: &notify.Event{Type: "accepted", Payload: map[string]any{"kind": kindPrice}},
			Broadcast: &notify.Event{Type: "progress", Payload: map[string]any{
				"phase":  st.Phase,
				"posted": len(me.prices),
				"firms":  len(me.inMarket),
			}},
			Complete: len(me.prices) >= len(me.inMarket),
		}, nil

	default:
		return nil, engine.ErrInvalidAction
	}
}

func (g *MarketEntry) persist(ctx context.Context, round *domain.Round, player *domain.Player, a engine.Action) error {
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

func (g *MarketEntry) allDecided(me *meState, players []*domain.Player) bool {
	for _, p := range players {
		if p.Role == domain.RoleEntrant && !me.entered[p.ID] {
			return false
		}
	}
	return true
}

func (g *MarketEntry) ProcessRoundEnd(ctx context.Context, round *domain.Round) ([]*domain.Outcome, error) {
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
		me := st.Data.(*meState)
		inMarket := make(map[int64]bool, len(me.inMarket))
		for id := range me.inMarket {
			inMarket[id] = true
		}
		prices := make(map[int64]float64, len(me.prices))
		for id, p := range me.prices {
			prices[id] = p
		}
		st.Phase = engine.PhaseComplete
		st.Unlock()
		g.deps.Scheduler.CancelRound(round.ID)

		// A firm that never posted sells at cost, earning nothing from
		// the market but undercutting lazy rivals.
		for id := range inMarket {
			if _, ok := prices[id]; !ok {
				prices[id] = g.unitCost()
			}
		}

		low := 0.0
		var winners []int64
		for id, p := range prices {
			if len(winners) == 0 || p < low {
				low, winners = p, []int64{id}
			} else if p == low {
				winners = append(winners, id)
			}
		}
		share := 0.0
		if len(winners) > 0 {
			share = g.demand() / float64(len(winners))
		}
		won := make(map[int64]bool, len(winners))
		for _, id := range winners {
			won[id] = true
		}

		var outcomes []*domain.Outcome
		for _, p := range players {
			o := &domain.Outcome{
				RoundID:  round.ID,
				PlayerID: p.ID,
				Details: map[string]any{
					"role":      string(p.Role),
					"in_market": inMarket[p.ID],
				},
			}
			switch {
			case !inMarket[p.ID]:
				o.Profit = g.outside()
			default:
				o.Details["price"] = prices[p.ID]
				if won[p.ID] {
					o.Profit = (low - g.unitCost()) * share
					o.Details["units_sold"] = share
				}
				if p.Role == domain.RoleEntrant {
					o.Profit -= g.entryCost()
				}
			}
			outcomes = append(outcomes, o)
		}

		g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
			Type: "round_summary",
			Payload: map[string]any{
				"firms":        len(inMarket),
				"market_price": low,
				"sellers":      len(winners),
			},
		})
		return outcomes, nil
	})
}

func (g *MarketEntry) GameState(ctx context.Context, round *domain.Round, playerID int64) (map[string]any, error) {
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
		if me, valid := st.Data.(*meState); valid {
			snap["phase"] = st.Phase
			snap["firms"] = len(me.inMarket)
			snap["decided"] = len(me.entered)
			if playerID > 0 {
				snap["my_in_market"] = me.inMarket[playerID]
				_, posted := me.prices[playerID]
				snap["my_posted"] = posted
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

func (g *MarketEntry) roster(ctx context.Context) ([]*domain.Player, error) {
	players, err := g.deps.Players.ListBySession(ctx, g.sess.ID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return engine.ActivePlayers(players), nil
}

func newMEState() *meState {
	return &meState{
		entered:  make(map[int64]bool),
		inMarket: make(map[int64]bool),
		prices:   make(map[int64]float64),
	}
}

// state rebuilds phase and commitments from the submission log after a
// restart. Entry timers do not survive restarts; a rebuilt entry phase
// gets a fresh timer.
func (g *MarketEntry) state(ctx context.Context, round *domain.Round) (*engine.RoundState, error) {
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
	me := newMEState()
	for _, p := range players {
		if p.Role == domain.RoleIncumbent {
			me.inMarket[p.ID] = true
		}
	}
	subs, err := g.deps.Subs.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("replay submissions: %w", err)
	}
	posting := false
	for _, s := range subs {
		switch s.Kind {
		case kindEntry:
			me.entered[s.PlayerID] = true
			if choice, _ := s.Data["choice"].(string); choice == "enter" {
				me.inMarket[s.PlayerID] = true
			}
		case kindPrice:
			me.prices[s.PlayerID] = s.Value
			posting = true
		}
	}
	st.Data = me
	if posting || g.allDecided(me, players) {
		st.Phase = phasePosting
	} else {
		st.Phase = phaseEntry
		g.armEntryTimer(round)
	}
	return st, nil
}
