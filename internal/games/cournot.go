package games

import (
	"fmt"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func init() {
	engine.Register(domain.GameTypeCournot, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypeCournot, deps, sess, &cournotRules{cfg: sess.Config})
	})
}

// cournotRules: quantity-setting oligopoly under linear demand. Price
// is intercept - slope * total quantity, floored at zero.
type cournotRules struct {
	cfg domain.Config
}

func (r *cournotRules) intercept() float64 { return r.cfg.Float("intercept", 100) }
func (r *cournotRules) slope() float64     { return r.cfg.Float("slope", 1) }
func (r *cournotRules) unitCost() float64  { return r.cfg.Float("unit_cost", 10) }
func (r *cournotRules) capacity() float64  { return r.cfg.Float("capacity", 50) }

func (r *cournotRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleSeller
	}
	return nil
}

func (r *cournotRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	return nil
}

func (r *cournotRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionDecision {
		return engine.ErrInvalidAction
	}
	if a.Value < 0 || a.Value > r.capacity() {
		return fmt.Errorf("%w: quantity must be between 0 and %v", engine.ErrInvalidAction, r.capacity())
	}
	return nil
}

func (r *cournotRules) Default(p *domain.Player) engine.Action {
	return engine.Action{Kind: domain.SubmissionDecision, Value: 0}
}

func (r *cournotRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	totalQ := 0.0
	for _, p := range players {
		totalQ += decisions[p.ID].Value
	}
	price := r.intercept() - r.slope()*totalQ
	if price < 0 {
		price = 0
	}

	var outcomes []*domain.Outcome
	for _, p := range players {
		q := decisions[p.ID].Value
		outcomes = append(outcomes, &domain.Outcome{
			PlayerID: p.ID,
			Profit:   (price - r.unitCost()) * q,
			Details: map[string]any{
				"quantity":     q,
				"market_price": price,
			},
		})
	}
	summary := map[string]any{
		"total_quantity": totalQ,
		"market_price":   price,
	}
	return outcomes, summary, nil
}
