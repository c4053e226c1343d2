package games

import (
	"fmt"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/match"
)

func init() {
	engine.Register(domain.GameTypeDiscriminative, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypeDiscriminative, deps, sess, &discriminativeRules{cfg: sess.Config})
	})
}

// discriminativeRules: multi-unit pay-as-bid auction. K identical units
// go to the K highest bidders, each paying their own bid against a
// private per-round valuation.
type discriminativeRules struct {
	cfg domain.Config
}

func (r *discriminativeRules) units() int       { return r.cfg.Int("units", 2) }
func (r *discriminativeRules) minValue() float64 { return r.cfg.Float("min_value", 0) }
func (r *discriminativeRules) maxValue() float64 { return r.cfg.Float("max_value", 100) }

func (r *discriminativeRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleBidder
	}
	return nil
}

func (r *discriminativeRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Valuation = uniformAmount(rng, r.minValue(), r.maxValue())
	}
	return nil
}

func (r *discriminativeRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionBid {
		return engine.ErrInvalidAction
	}
	if a.Value < 0 {
		return fmt.Errorf("%w: bid must be non-negative", engine.ErrInvalidAction)
	}
	return nil
}

func (r *discriminativeRules) Default(p *domain.Player) engine.Action {
	return abstain(domain.SubmissionBid)
}

func (r *discriminativeRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	var bids []match.Bid
	for _, p := range players {
		a := decisions[p.ID]
		if isAbstain(a) {
			continue
		}
		bids = append(bids, match.Bid{PlayerID: p.ID, Amount: a.Value})
	}
	awards := match.Discriminative(bids, r.units(), rng)
	won := make(map[int64]match.Award, len(awards))
	for _, a := range awards {
		won[a.PlayerID] = a
	}

	var outcomes []*domain.Outcome
	for _, p := range players {
		o := &domain.Outcome{
			PlayerID: p.ID,
			Details: map[string]any{
				"bid":       decisions[p.ID].Value,
				"valuation": p.Valuation,
				"won":       false,
			},
		}
		if a, ok := won[p.ID]; ok {
			o.Profit = p.Valuation - a.Pay
			o.Details["won"] = true
			o.Details["paid"] = a.Pay
		}
		outcomes = append(outcomes, o)
	}

	summary := map[string]any{
		"units":      r.units(),
		"units_sold": len(awards),
	}
	return outcomes, summary, nil
}
