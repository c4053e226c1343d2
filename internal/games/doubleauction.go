package games

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/match"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

func init() {
	engine.Register(domain.GameTypeDoubleAuction, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return NewDoubleAuction(deps, sess)
	})
}

const phaseTrading = "trading"

// daState is the ephemeral book of one trading round.
type daState struct {
	book   *match.OrderBook
	trades []match.Trade
	traded map[int64]int // units traded per player this round
}

// DoubleAuction runs a continuous double auction: buyers post bids,
// sellers post asks, and crossing orders execute immediately at the
// resting price. Unlike the simultaneous-move games, players act as
// often as they like until the round clock runs out or every tradable
// unit has traded.
type DoubleAuction struct {
	deps engine.Deps
	sess *domain.Session
	rng  *rand.Rand
}

func NewDoubleAuction(deps engine.Deps, sess *domain.Session) *DoubleAuction {
	return &DoubleAuction{
		deps: deps,
		sess: sess,
		rng:  engine.NewRand(sess.Config, time.Now().UnixNano()),
	}
}

func (g *DoubleAuction) Type() domain.GameType { return domain.GameTypeDoubleAuction }

func (g *DoubleAuction) units() int        { return g.sess.Config.Int("units", 1) }
func (g *DoubleAuction) maxOpen() int      { return g.sess.Config.Int("max_open_orders", 1) }
func (g *DoubleAuction) buyerMin() float64 { return g.sess.Config.Float("buyer_min", 60) }
func (g *DoubleAuction) buyerMax() float64 { return g.sess.Config.Float("buyer_max", 100) }
func (g *DoubleAuction) sellerMin() float64 { return g.sess.Config.Float("seller_min", 20) }
func (g *DoubleAuction) sellerMax() float64 { return g.sess.Config.Float("seller_max", 60) }

func (g *DoubleAuction) SetupPlayers(ctx context.Context, players []*domain.Player) error {
	for i, p := range players {
		if i%2 == 0 {
			p.Role = domain.RoleBuyer
		} else {
			p.Role = domain.RoleSeller
		}
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}
	return nil
}

func (g *DoubleAuction) OnRoundStart(ctx context.Context, round *domain.Round) error {
	players, err := g.roster(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		if p.Role == domain.RoleBuyer {
			p.Valuation = uniformAmount(g.rng, g.buyerMin(), g.buyerMax())
		} else {
			p.Valuation = uniformAmount(g.rng, g.sellerMin(), g.sellerMax())
		}
		if err := g.deps.Players.Update(ctx, p); err != nil {
			return fmt.Errorf("persist player %d: %w", p.ID, err)
		}
	}

	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	st.Phase = phaseTrading
	st.Data = &daState{
		book:   match.NewOrderBook(),
		traded: make(map[int64]int),
	}
	st.Unlock()

	for _, p := range players {
		label := "value"
		if p.Role == domain.RoleSeller {
			label = "cost"
		}
		g.deps.Notifier.Notify(g.sess.ID, notify.Player(p.ID), notify.Event{
			Type: "private",
			Payload: map[string]any{
				"round": round.Number,
				"role":  p.Role,
				label:   p.Valuation,
				"units": g.units(),
			},
		})
	}
	return nil
}

func (g *DoubleAuction) HandleAction(ctx context.Context, round *domain.Round, player *domain.Player, a engine.Action) (*engine.ActionResult, error) {
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

	if st.Phase != phaseTrading {
		return nil, engine.ErrWrongPhase
	}
	da := st.Data.(*daState)

	if err := g.validate(player, a, da); err != nil {
		return nil, err
	}

	// Persist first, then apply. The book is rebuilt by replaying
	// submissions in order, so a persisted order is never lost.
	if err := g.deps.Subs.Create(ctx, &domain.Submission{
		RoundID:  round.ID,
		PlayerID: player.ID,
		Kind:     a.Kind,
		Value:    a.Value,
		Data:     a.Data,
	}); err != nil {
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	trades := g.apply(da, player.ID, a)
	for _, tr := range trades {
		engine.TradesExecuted.WithLabelValues(string(g.Type())).Inc()
		g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
			Type: "trade",
			Payload: map[string]any{
				"buyer_id":  tr.BuyerID,
				"seller_id": tr.SellerID,
				"price":     tr.Price,
				"trades":    len(da.trades),
			},
		})
	}

	bidDepth, askDepth := da.book.Depth()
	res := &engine.ActionResult{
		Reply: &notify.Event{Type: "accepted", Payload: map[string]any{
			"kind": a.Kind, "round": round.Number,
		}},
		Broadcast: &notify.Event{Type: "book", Payload: g.bookPayload(da, bidDepth, askDepth)},
		Complete:  g.exhausted(da, players),
	}
	return res, nil
}

func (g *DoubleAuction) validate(p *domain.Player, a engine.Action, da *daState) error {
	switch a.Kind {
	case domain.SubmissionBid:
		if p.Role != domain.RoleBuyer {
			return engine.ErrWrongRole
		}
	case domain.SubmissionAsk:
		if p.Role != domain.RoleSeller {
			return engine.ErrWrongRole
		}
	case domain.SubmissionCancel:
		return nil
	default:
		return engine.ErrInvalidAction
	}
	if a.Value < 0 {
		return fmt.Errorf("%w: price must be non-negative", engine.ErrInvalidAction)
	}
	if da.traded[p.ID] >= g.units() {
		return fmt.Errorf("%w: all units already traded", engine.ErrInvalidAction)
	}
	return nil
}

// apply mutates the book for one persisted submission. Shared by the
// live path and the restart replay, so both produce the same book.
func (g *DoubleAuction) apply(da *daState, playerID int64, a engine.Action) []match.Trade {
	var trades []match.Trade
	switch a.Kind {
	case domain.SubmissionBid:
		trades = da.book.SubmitBid(playerID, a.Value)
	case domain.SubmissionAsk:
		trades = da.book.SubmitAsk(playerID, a.Value)
	case domain.SubmissionCancel:
		side := match.Buy
		if s, _ := a.Data["side"].(string); s == "ask" {
			side = match.Sell
		}
		da.book.Cancel(playerID, side)
		return nil
	}

	for _, tr := range trades {
		da.trades = append(da.trades, tr)
		da.traded[tr.BuyerID]++
		da.traded[tr.SellerID]++
		// A party with no capacity left must not keep standing orders.
		da.book.Prune(tr.BuyerID, match.Buy, g.units()-da.traded[tr.BuyerID])
		da.book.Prune(tr.SellerID, match.Sell, g.units()-da.traded[tr.SellerID])
	}

	// Cap the submitter's standing orders regardless of outcome.
	side := match.Buy
	if a.Kind == domain.SubmissionAsk {
		side = match.Sell
	}
	open := g.maxOpen()
	if left := g.units() - da.traded[playerID]; left < open {
		open = left
	}
	da.book.Prune(playerID, side, open)
	return trades
}

// exhausted reports whether no further trade is possible because one
// whole side has used up its capacity.
func (g *DoubleAuction) exhausted(da *daState, players []*domain.Player) bool {
	buyerLeft, sellerLeft := 0, 0
	for _, p := range players {
		left := g.units() - da.traded[p.ID]
		if left <= 0 {
			continue
		}
		if p.Role == domain.RoleBuyer {
			buyerLeft += left
		} else {
			sellerLeft += left
		}
	}
	return buyerLeft == 0 || sellerLeft == 0
}

func (g *DoubleAuction) ProcessRoundEnd(ctx context.Context, round *domain.Round) ([]*domain.Outcome, error) {
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
		da := st.Data.(*daState)
		trades := append([]match.Trade(nil), da.trades...)
		st.Phase = engine.PhaseComplete
		st.Unlock()

		byID := make(map[int64]*domain.Player, len(players))
		for _, p := range players {
			byID[p.ID] = p
		}

		profit := make(map[int64]float64)
		unitsTraded := make(map[int64]int)
		priceSum, realized := 0.0, 0.0
		for _, tr := range trades {
			priceSum += tr.Price
			if b, ok := byID[tr.BuyerID]; ok {
				profit[b.ID] += b.Valuation - tr.Price
				realized += b.Valuation - tr.Price
				unitsTraded[b.ID]++
			}
			if s, ok := byID[tr.SellerID]; ok {
				profit[s.ID] += tr.Price - s.Valuation
				realized += tr.Price - s.Valuation
				unitsTraded[s.ID]++
			}
		}

		var vals, costs []float64
		for _, p := range players {
			for i := 0; i < g.units(); i++ {
				if p.Role == domain.RoleBuyer {
					vals = append(vals, p.Valuation)
				} else {
					costs = append(costs, p.Valuation)
				}
			}
		}

		var outcomes []*domain.Outcome
		for _, p := range players {
			outcomes = append(outcomes, &domain.Outcome{
				RoundID:  round.ID,
				PlayerID: p.ID,
				Profit:   profit[p.ID],
				Details: map[string]any{
					"role":         string(p.Role),
					"valuation":    p.Valuation,
					"units_traded": unitsTraded[p.ID],
				},
			})
		}

		summary := map[string]any{
			"trades":     len(trades),
			"efficiency": match.Efficiency(realized, vals, costs),
		}
		if len(trades) > 0 {
			summary["avg_price"] = priceSum / float64(len(trades))
		}
		g.deps.Notifier.Notify(g.sess.ID, notify.Everyone(), notify.Event{
			Type:    "round_summary",
			Payload: summary,
		})
		return outcomes, nil
	})
}

func (g *DoubleAuction) GameState(ctx context.Context, round *domain.Round, playerID int64) (map[string]any, error) {
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
		if da, valid := st.Data.(*daState); valid {
			bidDepth, askDepth := da.book.Depth()
			snap["phase"] = st.Phase
			snap["book"] = g.bookPayload(da, bidDepth, askDepth)
			if playerID > 0 {
				snap["my_open_bids"] = da.book.OpenOrders(playerID, match.Buy)
				snap["my_open_asks"] = da.book.OpenOrders(playerID, match.Sell)
				snap["my_units_traded"] = da.traded[playerID]
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

func (g *DoubleAuction) bookPayload(da *daState, bidDepth, askDepth int) map[string]any {
	payload := map[string]any{
		"bid_depth": bidDepth,
		"ask_depth": askDepth,
		"trades":    len(da.trades),
	}
	if best, ok := da.book.BestBid(); ok {
		payload["best_bid"] = best.Price
	}
	if best, ok := da.book.BestAsk(); ok {
		payload["best_ask"] = best.Price
	}
	return payload
}

func (g *DoubleAuction) roster(ctx context.Context) ([]*domain.Player, error) {
	players, err := g.deps.Players.ListBySession(ctx, g.sess.ID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return engine.ActivePlayers(players), nil
}

// state returns the round's book, rebuilding it from the persisted
// submission log after a process restart. Replaying in submission order
// reproduces the exact trade sequence.
func (g *DoubleAuction) state(ctx context.Context, round *domain.Round) (*engine.RoundState, error) {
	st := g.deps.State.GetOrCreate(round.ID)
	st.Lock()
	defer st.Unlock()
	if st.Data != nil {
		return st, nil
	}
	st.Phase = phaseTrading
	da := &daState{
		book:   match.NewOrderBook(),
		traded: make(map[int64]int),
	}
	subs, err := g.deps.Subs.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("replay submissions: %w", err)
	}
	for _, s := range subs {
		g.apply(da, s.PlayerID, engine.Action{Kind: s.Kind, Value: s.Value, Data: s.Data})
	}
	st.Data = da
	return st, nil
}
