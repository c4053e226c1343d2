package games

import (
	"fmt"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func init() {
	engine.Register(domain.GameTypePublicGoods, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypePublicGoods, deps, sess, &publicGoodsRules{cfg: sess.Config})
	})
}

// publicGoodsRules: every player holds an endowment and chooses how
// much to contribute to a common pool. The pool is multiplied and
// shared equally.
type publicGoodsRules struct {
	cfg domain.Config
}

func (r *publicGoodsRules) endowment() float64  { return r.cfg.Float("endowment", 20) }
func (r *publicGoodsRules) multiplier() float64 { return r.cfg.Float("multiplier", 1.6) }

func (r *publicGoodsRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleTrader
	}
	return nil
}

func (r *publicGoodsRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	return nil
}

func (r *publicGoodsRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionDecision {
		return engine.ErrInvalidAction
	}
	if a.Value < 0 || a.Value > r.endowment() {
		return fmt.Errorf("%w: contribution must be between 0 and %v", engine.ErrInvalidAction, r.endowment())
	}
	return nil
}

func (r *publicGoodsRules) Default(p *domain.Player) engine.Action {
	return engine.Action{Kind: domain.SubmissionDecision, Value: 0}
}

func (r *publicGoodsRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	total := 0.0
	for _, p := range players {
		total += decisions[p.ID].Value
	}
	share := 0.0
	if len(players) > 0 {
		share = total * r.multiplier() / float64(len(players))
	}

	var outcomes []*domain.Outcome
	for _, p := range players {
		c := decisions[p.ID].Value
		outcomes = append(outcomes, &domain.Outcome{
			PlayerID: p.ID,
			Profit:   r.endowment() - c + share,
			Details: map[string]any{
				"contribution": c,
				"pool_share":   share,
			},
		})
	}
	summary := map[string]any{
		"total_contribution": total,
		"pool_share":         share,
	}
	return outcomes, summary, nil
}
