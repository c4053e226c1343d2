package games

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func init() {
	engine.Register(domain.GameTypeCoordination, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypeCoordination, deps, sess, &coordinationRules{cfg: sess.Config})
	})
}

// coordinationRules: the minimum-effort coordination game. Payoff rises
// with the group minimum and falls with the player's own effort, so the
// efficient outcome needs everyone at the top effort level.
type coordinationRules struct {
	cfg domain.Config
}

func (r *coordinationRules) base() float64     { return r.cfg.Float("base", 60) }
func (r *coordinationRules) minCoeff() float64 { return r.cfg.Float("min_coeff", 20) }
func (r *coordinationRules) ownCost() float64  { return r.cfg.Float("own_cost", 10) }
func (r *coordinationRules) minEffort() float64 { return r.cfg.Float("min_effort", 1) }
func (r *coordinationRules) maxEffort() float64 { return r.cfg.Float("max_effort", 7) }

func (r *coordinationRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleTrader
	}
	return nil
}

func (r *coordinationRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	return nil
}

func (r *coordinationRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionDecision {
		return engine.ErrInvalidAction
	}
	if a.Value != math.Trunc(a.Value) || a.Value < r.minEffort() || a.Value > r.maxEffort() {
		return fmt.Errorf("%w: effort must be a whole number from %v to %v",
			engine.ErrInvalidAction, r.minEffort(), r.maxEffort())
	}
	return nil
}

// Default is the lowest effort level: a no-show drags the group minimum
// down rather than inventing participation.
func (r *coordinationRules) Default(p *domain.Player) engine.Action {
	return engine.Action{Kind: domain.SubmissionDecision, Value: r.minEffort()}
}

func (r *coordinationRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	groupMin := math.Inf(1)
	for _, p := range players {
		if e := decisions[p.ID].Value; e < groupMin {
			groupMin = e
		}
	}
	if math.IsInf(groupMin, 1) {
		groupMin = r.minEffort()
	}

	var outcomes []*domain.Outcome
	for _, p := range players {
		e := decisions[p.ID].Value
		outcomes = append(outcomes, &domain.Outcome{
			PlayerID: p.ID,
			Profit:   r.base() + r.minCoeff()*groupMin - r.ownCost()*e,
			Details: map[string]any{
				"effort":    e,
				"group_min": groupMin,
			},
		})
	}
	summary := map[string]any{"group_min": groupMin}
	return outcomes, summary, nil
}
