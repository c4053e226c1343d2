// Package match holds the pure matching and clearing algorithms shared
// by the game engines. Everything here is deterministic given the
// injected random source and touches no storage.
package match

import "sort"

// Side of an order in the book.
type Side int

const (
	Buy Side = iota
	Sell
)

// Order is one standing bid or ask.
type Order struct {
	PlayerID int64
	Price    float64
	Seq      int64 // arrival order, used for FIFO tie-breaks
}

// Trade is one executed bid/ask pair. Price is always the resting
// order's price, never the incoming order's.
type Trade struct {
	BuyerID  int64
	SellerID int64
	Price    float64
}

// OrderBook holds standing bids and asks for one round. Not safe for
// concurrent use; the round state machine serializes access.
type OrderBook struct {
	bids []Order
	asks []Order
	seq  int64
}

func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

// SubmitBid records a new bid and attempts to match it against the best
// standing ask. Returns the executed trade, if any.
func (b *OrderBook) SubmitBid(playerID int64, price float64) []Trade {
	return b.submit(Buy, playerID, price)
}

// SubmitAsk records a new ask and attempts to match it against the best
// standing bid.
func (b *OrderBook) SubmitAsk(playerID int64, price float64) []Trade {
	return b.submit(Sell, playerID, price)
}

func (b *OrderBook) submit(side Side, playerID int64, price float64) []Trade {
	b.seq++
	incoming := Order{PlayerID: playerID, Price: price, Seq: b.seq}

	var trades []Trade
	opposing := &b.asks
	if side == Sell {
		opposing = &b.bids
	}

	// Walk the opposing side from the best price. A same-owner pair is
	// skipped, not removed: the next resting order gets its chance.
	for idx := 0; idx < len(*opposing); idx++ {
		rest := (*opposing)[idx]
		if !crosses(side, price, rest.Price) {
			break
		}
		if rest.PlayerID == playerID {
			continue
		}
		*opposing = append((*opposing)[:idx], (*opposing)[idx+1:]...)
		if side == Buy {
			trades = append(trades, Trade{BuyerID: playerID, SellerID: rest.PlayerID, Price: rest.Price})
		} else {
			trades = append(trades, Trade{BuyerID: rest.PlayerID, SellerID: playerID, Price: rest.Price})
		}
		return trades
	}

	// No match: the order rests in the book.
	if side == Buy {
		b.bids = insertSorted(b.bids, incoming, func(a, o Order) bool {
			if a.Price != o.Price {
				return a.Price > o.Price
			}
			return a.Seq < o.Seq
		})
	} else {
		b.asks = insertSorted(b.asks, incoming, func(a, o Order) bool {
			if a.Price != o.Price {
				return a.Price < o.Price
			}
			return a.Seq < o.Seq
		})
	}
	return nil
}

func crosses(incoming Side, incomingPrice, restingPrice float64) bool {
	if incoming == Buy {
		return incomingPrice >= restingPrice
	}
	return incomingPrice <= restingPrice
}

func insertSorted(book []Order, o Order, less func(a, b Order) bool) []Order {
	i := sort.Search(len(book), func(i int) bool { return less(o, book[i]) })
	book = append(book, Order{})
	copy(book[i+1:], book[i:])
	book[i] = o
	return book
}

// Cancel removes the given player's most recently submitted standing
// order on the given side. Reports whether anything was removed.
func (b *OrderBook) Cancel(playerID int64, side Side) bool {
	book := &b.bids
	if side == Sell {
		book = &b.asks
	}
	best := -1
	for i, o := range *book {
		if o.PlayerID == playerID && (best < 0 || o.Seq > (*book)[best].Seq) {
			best = i
		}
	}
	if best < 0 {
		return false
	}
	*book = append((*book)[:best], (*book)[best+1:]...)
	return true
}

// Prune drops the player's newest standing orders on the given side
// until at most maxOpen remain. Earliest orders are retained; the most
// recent are dropped first when a budget is exceeded.
func (b *OrderBook) Prune(playerID int64, side Side, maxOpen int) int {
	book := &b.bids
	if side == Sell {
		book = &b.asks
	}
	if maxOpen < 0 {
		maxOpen = 0
	}
	open := 0
	for _, o := range *book {
		if o.PlayerID == playerID {
			open++
		}
	}
	dropped := 0
	for open > maxOpen {
		newest := -1
		for i, o := range *book {
			if o.PlayerID == playerID && (newest < 0 || o.Seq > (*book)[newest].Seq) {
				newest = i
			}
		}
		*book = append((*book)[:newest], (*book)[newest+1:]...)
		open--
		dropped++
	}
	return dropped
}

// BestBid returns the highest standing bid.
func (b *OrderBook) BestBid() (Order, bool) {
	if len(b.bids) == 0 {
		return Order{}, false
	}
	return b.bids[0], true
}

// BestAsk returns the lowest standing ask.
func (b *OrderBook) BestAsk() (Order, bool) {
	if len(b.asks) == 0 {
		return Order{}, false
	}
	return b.asks[0], true
}

// Depth returns the number of standing orders on each side.
func (b *OrderBook) Depth() (bids, asks int) {
	return len(b.bids), len(b.asks)
}

// OpenOrders counts the player's standing orders on the given side.
func (b *OrderBook) OpenOrders(playerID int64, side Side) int {
	book := b.bids
	if side == Sell {
		book = b.asks
	}
	n := 0
	for _, o := range book {
		if o.PlayerID == playerID {
			n++
		}
	}
	return n
}

// Bids returns a copy of the standing bids, best first.
func (b *OrderBook) Bids() []Order {
	return append([]Order(nil), b.bids...)
}

// Asks returns a copy of the standing asks, best first.
func (b *OrderBook) Asks() []Order {
	return append([]Order(nil), b.asks...)
}
