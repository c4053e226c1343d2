package games

import (
	"fmt"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/match"
)

func init() {
	engine.Register(domain.GameTypeGSP, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypeGSP, deps, sess, &gspRules{cfg: sess.Config})
	})
}

// gspRules: generalized second-price position auction. Bidders compete
// for ad slots whose click weights decay geometrically; a winner pays
// the next-ranked bid per click and earns their per-click value on the
// weight of the slot won.
type gspRules struct {
	cfg domain.Config
}

func (r *gspRules) positions() int      { return r.cfg.Int("positions", 2) }
func (r *gspRules) topWeight() float64  { return r.cfg.Float("top_weight", 100) }
func (r *gspRules) decay() float64      { return r.cfg.Float("decay", 0.7) }
func (r *gspRules) minValue() float64   { return r.cfg.Float("min_value", 1) }
func (r *gspRules) maxValue() float64   { return r.cfg.Float("max_value", 20) }

func (r *gspRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleBidder
	}
	return nil
}

func (r *gspRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	// Valuation is the per-click value, drawn fresh each round.
	for _, p := range players {
		p.Valuation = uniformAmount(rng, r.minValue(), r.maxValue())
	}
	return nil
}

func (r *gspRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionBid {
		return engine.ErrInvalidAction
	}
	if a.Value < 0 {
		return fmt.Errorf("%w: bid must be non-negative", engine.ErrInvalidAction)
	}
	return nil
}

func (r *gspRules) Default(p *domain.Player) engine.Action {
	return abstain(domain.SubmissionBid)
}

func (r *gspRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	var bids []match.Bid
	for _, p := range players {
		a := decisions[p.ID]
		if isAbstain(a) {
			continue
		}
		bids = append(bids, match.Bid{PlayerID: p.ID, Amount: a.Value})
	}
	weights := match.GeometricWeights(r.positions(), r.topWeight(), r.decay())
	awards := match.GSP(bids, weights)
	won := make(map[int64]match.Award, len(awards))
	for _, a := range awards {
		won[a.PlayerID] = a
	}

	var outcomes []*domain.Outcome
	for _, p := range players {
		o := &domain.Outcome{
			PlayerID: p.ID,
			Details: map[string]any{
				"bid":         decisions[p.ID].Value,
				"click_value": p.Valuation,
				"position":    0,
			},
		}
		if a, ok := won[p.ID]; ok {
			o.Profit = a.Weight*p.Valuation - a.Pay
			o.Details["position"] = a.Position
			o.Details["clicks"] = a.Weight
			o.Details["paid"] = a.Pay
		}
		outcomes = append(outcomes, o)
	}

	summary := map[string]any{
		"positions": r.positions(),
		"filled":    len(awards),
	}
	return outcomes, summary, nil
}
