package match

import (
	"math/rand"
	"sort"
)

// Auction formats for SealedAuction.
const (
	FormatFirstPrice  = "first_price"
	FormatSecondPrice = "second_price"
)

// SealedResult names the winner and the price charged.
type SealedResult struct {
	WinnerID int64
	Price    float64
}

// SealedAuction ranks bids descending; the highest wins, ties broken
// uniformly at random. First price charges the winner their own bid,
// second price charges the second-highest bid (zero with one bidder).
// Reports false when there are no bids.
func SealedAuction(bids []Bid, format string, rng *rand.Rand) (SealedResult, bool) {
	if len(bids) == 0 {
		return SealedResult{}, false
	}
	ranked := append([]Bid(nil), bids...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })

	top := ranked[0].Amount
	tied := 0
	for tied < len(ranked) && ranked[tied].Amount == top {
		tied++
	}
	winner := ranked[rng.Intn(tied)]

	price := winner.Amount
	if format == FormatSecondPrice {
		price = 0
		if tied > 1 {
			price = top
		} else if len(ranked) > 1 {
			price = ranked[1].Amount
		}
	}
	return SealedResult{WinnerID: winner.PlayerID, Price: price}, true
}
