package match

import (
	"math"
	"sort"
)

// CallOrder is one sealed bid or ask in a call market.
type CallOrder struct {
	PlayerID int64
	Price    float64
}

// CallResult is the outcome of clearing a call market: Quantity pairs
// trade at the single uniform Price. Buyers and Sellers hold the matched
// player ids in rank order (best first). Quantity 0 means no trades and
// Price 0.
type CallResult struct {
	Quantity int
	Price    float64
	Buyers   []int64
	Sellers  []int64
}

// ClearCallMarket sorts bids descending and asks ascending, finds the
// largest quantity Q such that the Q-th ranked bid is >= the Q-th ranked
// ask, and clears all Q pairs at the midpoint of the marginal pair,
// rounded to tick (no rounding when tick <= 0).
func ClearCallMarket(bids, asks []CallOrder, tick float64) CallResult {
	bids = append([]CallOrder(nil), bids...)
	asks = append([]CallOrder(nil), asks...)
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	q := 0
	for q < len(bids) && q < len(asks) && bids[q].Price >= asks[q].Price {
		q++
	}
	if q == 0 {
		return CallResult{}
	}

	price := (bids[q-1].Price + asks[q-1].Price) / 2
	if tick > 0 {
		price = math.Round(price/tick) * tick
	}

	res := CallResult{Quantity: q, Price: price}
	for i := 0; i < q; i++ {
		res.Buyers = append(res.Buyers, bids[i].PlayerID)
		res.Sellers = append(res.Sellers, asks[i].PlayerID)
	}
	return res
}
