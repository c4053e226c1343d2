package games

import (
	"fmt"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/match"
)

func init() {
	engine.Register(domain.GameTypeCallMarket, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypeCallMarket, deps, sess, &callMarketRules{cfg: sess.Config})
	})
}

// callMarketRules: sealed-order uniform-price market. Half the roster
// buys, half sells; buyers submit bids against a private value, sellers
// asks against a private cost, and all trades clear at one price.
type callMarketRules struct {
	cfg domain.Config
}

func (r *callMarketRules) buyerMin() float64  { return r.cfg.Float("buyer_min", 60) }
func (r *callMarketRules) buyerMax() float64  { return r.cfg.Float("buyer_max", 100) }
func (r *callMarketRules) sellerMin() float64 { return r.cfg.Float("seller_min", 20) }
func (r *callMarketRules) sellerMax() float64 { return r.cfg.Float("seller_max", 60) }
func (r *callMarketRules) tick() float64      { return r.cfg.Float("tick", 1) }

func (r *callMarketRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	// Alternate roles so odd rosters split as evenly as possible.
	for i, p := range players {
		if i%2 == 0 {
			p.Role = domain.RoleBuyer
		} else {
			p.Role = domain.RoleSeller
		}
	}
	return nil
}

func (r *callMarketRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		if p.Role == domain.RoleBuyer {
			p.Valuation = uniformAmount(rng, r.buyerMin(), r.buyerMax())
		} else {
			p.Valuation = uniformAmount(rng, r.sellerMin(), r.sellerMax())
		}
	}
	return nil
}

func (r *callMarketRules) Validate(p *domain.Player, a engine.Action) error {
	switch {
	case p.Role == domain.RoleBuyer && a.Kind != domain.SubmissionBid:
		return engine.ErrWrongRole
	case p.Role == domain.RoleSeller && a.Kind != domain.SubmissionAsk:
		return engine.ErrWrongRole
	}
	if a.Value < 0 {
		return fmt.Errorf("%w: price must be non-negative", engine.ErrInvalidAction)
	}
	return nil
}

func (r *callMarketRules) Default(p *domain.Player) engine.Action {
	if p.Role == domain.RoleBuyer {
		return abstain(domain.SubmissionBid)
	}
	return abstain(domain.SubmissionAsk)
}

func (r *callMarketRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	byID := make(map[int64]*domain.Player, len(players))
	var bids, asks []match.CallOrder
	for _, p := range players {
		byID[p.ID] = p
		a := decisions[p.ID]
		if isAbstain(a) {
			continue
		}
		order := match.CallOrder{PlayerID: p.ID, Price: a.Value}
		if p.Role == domain.RoleBuyer {
			bids = append(bids, order)
		} else {
			asks = append(asks, order)
		}
	}
	result := match.ClearCallMarket(bids, asks, r.tick())

	traded := make(map[int64]bool, result.Quantity*2)
	for _, id := range result.Buyers {
		traded[id] = true
	}
	for _, id := range result.Sellers {
		traded[id] = true
	}

	var outcomes []*domain.Outcome
	for _, p := range players {
		o := &domain.Outcome{
			PlayerID: p.ID,
			Details: map[string]any{
				"role":      string(p.Role),
				"order":     decisions[p.ID].Value,
				"valuation": p.Valuation,
				"traded":    traded[p.ID],
			},
		}
		if traded[p.ID] {
			if p.Role == domain.RoleBuyer {
				o.Profit = p.Valuation - result.Price
			} else {
				o.Profit = result.Price - p.Valuation
			}
			o.Details["price"] = result.Price
		}
		outcomes = append(outcomes, o)
	}

	summary := map[string]any{"quantity": result.Quantity}
	if result.Quantity > 0 {
		summary["price"] = result.Price
	}
	return outcomes, summary, nil
}
