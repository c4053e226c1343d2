package games

import (
	"fmt"
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/match"
)

func init() {
	engine.Register(domain.GameTypeSealedAuction, func(deps engine.Deps, sess *domain.Session) engine.Game {
		return engine.NewSimGame(domain.GameTypeSealedAuction, deps, sess, &sealedAuctionRules{cfg: sess.Config})
	})
}

// sealedAuctionRules: single-unit sealed-bid auction, first or second
// price. Each bidder draws a private valuation per round; the winner
// earns valuation minus price, losers earn nothing.
type sealedAuctionRules struct {
	cfg domain.Config
}

func (r *sealedAuctionRules) format() string {
	f := r.cfg.Str("format", match.FormatFirstPrice)
	if f != match.FormatFirstPrice && f != match.FormatSecondPrice {
		return match.FormatFirstPrice
	}
	return f
}

func (r *sealedAuctionRules) minValue() float64 { return r.cfg.Float("min_value", 0) }
func (r *sealedAuctionRules) maxValue() float64 { return r.cfg.Float("max_value", 100) }

func (r *sealedAuctionRules) Setup(players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Role = domain.RoleBidder
	}
	return nil
}

func (r *sealedAuctionRules) RoundSetup(round *domain.Round, players []*domain.Player, rng *rand.Rand) error {
	for _, p := range players {
		p.Valuation = uniformAmount(rng, r.minValue(), r.maxValue())
	}
	return nil
}

func (r *sealedAuctionRules) Validate(p *domain.Player, a engine.Action) error {
	if a.Kind != domain.SubmissionBid {
		return engine.ErrInvalidAction
	}
	if a.Value < 0 {
		return fmt.Errorf("%w: bid must be non-negative", engine.ErrInvalidAction)
	}
	return nil
}

func (r *sealedAuctionRules) Default(p *domain.Player) engine.Action {
	return abstain(domain.SubmissionBid)
}

func (r *sealedAuctionRules) Payoffs(players []*domain.Player, decisions map[int64]engine.Action, rng *rand.Rand) ([]*domain.Outcome, map[string]any, error) {
	var bids []match.Bid
	for _, p := range players {
		a := decisions[p.ID]
		if isAbstain(a) {
			continue
		}
		bids = append(bids, match.Bid{PlayerID: p.ID, Amount: a.Value})
	}
	result, sold := match.SealedAuction(bids, r.format(), rng)

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
		if sold && p.ID == result.WinnerID {
			o.Profit = p.Valuation - result.Price
			o.Details["won"] = true
			o.Details["price"] = result.Price
		}
		outcomes = append(outcomes, o)
	}

	summary := map[string]any{"format": r.format(), "sold": sold}
	if sold {
		summary["price"] = result.Price
	}
	return outcomes, summary, nil
}
