package match

import (
	"math/rand"
	"sort"
)

// Bid is one sealed bid in a multi-unit or single-unit auction.
type Bid struct {
	PlayerID int64
	Amount   float64
}

// Award is one winning allocation. Pay is the total payment. For GSP,
// Position is the 1-based position won and Weight its click rate.
type Award struct {
	PlayerID int64
	Pay      float64
	Position int
	Weight   float64
}

// Discriminative ranks bids descending and awards one unit each to the
// top K bidders, every winner paying their own bid. Ties at the cutoff
// are broken uniformly at random among the tied bidders.
func Discriminative(bids []Bid, units int, rng *rand.Rand) []Award {
	if units <= 0 || len(bids) == 0 {
		return nil
	}
	ranked := append([]Bid(nil), bids...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })

	if units > len(ranked) {
		units = len(ranked)
	}
	cutoff := ranked[units-1].Amount

	// Everyone strictly above the cutoff wins outright.
	var awards []Award
	var tied []Bid
	for _, b := range ranked {
		if b.Amount > cutoff {
			awards = append(awards, Award{PlayerID: b.PlayerID, Pay: b.Amount})
		} else if b.Amount == cutoff {
			tied = append(tied, b)
		}
	}

	// Fill the remaining units from the tied bidders at random.
	remaining := units - len(awards)
	rng.Shuffle(len(tied), func(i, j int) { tied[i], tied[j] = tied[j], tied[i] })
	for i := 0; i < remaining; i++ {
		awards = append(awards, Award{PlayerID: tied[i].PlayerID, Pay: tied[i].Amount})
	}
	return awards
}

// GSP ranks bids descending and assigns position i to the i-th ranked
// bidder, up to the number of weights. A winner in position i pays the
// bid of the bidder ranked i+1 per unit of weight; with no bidder below,
// the payment is zero. Unassigned bidders pay nothing.
func GSP(bids []Bid, weights []float64) []Award {
	ranked := append([]Bid(nil), bids...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })

	var awards []Award
	for i := 0; i < len(ranked) && i < len(weights); i++ {
		perUnit := 0.0
		if i+1 < len(ranked) {
			perUnit = ranked[i+1].Amount
		}
		awards = append(awards, Award{
			PlayerID: ranked[i].PlayerID,
			Pay:      perUnit * weights[i],
			Position: i + 1,
			Weight:   weights[i],
		})
	}
	return awards
}

// GeometricWeights builds n position weights starting at top and
// decaying by ratio: top, top*ratio, top*ratio^2, ...
func GeometricWeights(n int, top, ratio float64) []float64 {
	weights := make([]float64, n)
	w := top
	for i := range weights {
		weights[i] = w
		w *= ratio
	}
	return weights
}
