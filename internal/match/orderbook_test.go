package match

import "testing"

func TestRestingOrderSetsPrice(t *testing.T) {
	b := NewOrderBook()
	if trades := b.SubmitAsk(1, 50); len(trades) != 0 {
		t.Fatalf("ask against empty book traded: %v", trades)
	}
	trades := b.SubmitBid(2, 60)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Price != 50 {
		t.Errorf("trade price = %v, want resting price 50", tr.Price)
	}
	if tr.BuyerID != 2 || tr.SellerID != 1 {
		t.Errorf("trade parties = buyer %d seller %d", tr.BuyerID, tr.SellerID)
	}
	if bids, asks := b.Depth(); bids != 0 || asks != 0 {
		t.Errorf("book not empty after trade: %d bids %d asks", bids, asks)
	}
}

func TestNoSelfTrade(t *testing.T) {
	b := NewOrderBook()
	b.SubmitAsk(1, 50)
	if trades := b.SubmitBid(1, 60); len(trades) != 0 {
		t.Fatalf("same-owner pair traded: %v", trades)
	}
	// Both orders must still be standing.
	if bids, asks := b.Depth(); bids != 1 || asks != 1 {
		t.Fatalf("depth = %d bids %d asks, want 1/1", bids, asks)
	}
}

func TestSelfTradeSkipsToNextAsk(t *testing.T) {
	b := NewOrderBook()
	b.SubmitAsk(1, 50)
	b.SubmitAsk(2, 55)
	trades := b.SubmitBid(1, 60)
	if len(trades) != 1 {
		t.Fatalf("expected trade past own ask, got %v", trades)
	}
	if trades[0].SellerID != 2 || trades[0].Price != 55 {
		t.Errorf("trade = %+v, want seller 2 at 55", trades[0])
	}
	// Own ask at 50 still rests.
	if ask, ok := b.BestAsk(); !ok || ask.PlayerID != 1 || ask.Price != 50 {
		t.Errorf("best ask = %+v ok=%v, want player 1 at 50", ask, ok)
	}
}

func TestPriceTimePriority(t *testing.T) {
	b := NewOrderBook()
	b.SubmitAsk(1, 50) // first in at 50
	b.SubmitAsk(2, 50) // second in at same price
	b.SubmitAsk(3, 45) // better price, later

	trades := b.SubmitBid(4, 60)
	if len(trades) != 1 || trades[0].SellerID != 3 {
		t.Fatalf("best price should win: %v", trades)
	}
	trades = b.SubmitBid(5, 60)
	if len(trades) != 1 || trades[0].SellerID != 1 {
		t.Fatalf("FIFO at equal price should pick seller 1: %v", trades)
	}
	trades = b.SubmitBid(6, 60)
	if len(trades) != 1 || trades[0].SellerID != 2 {
		t.Fatalf("remaining seller 2 should match: %v", trades)
	}
}

func TestNoCrossNoTrade(t *testing.T) {
	b := NewOrderBook()
	b.SubmitAsk(1, 70)
	if trades := b.SubmitBid(2, 60); len(trades) != 0 {
		t.Fatalf("bid 60 vs ask 70 traded: %v", trades)
	}
	if bid, ok := b.BestBid(); !ok || bid.Price != 60 {
		t.Errorf("bid should rest in book")
	}
}

func TestCancelRemovesNewest(t *testing.T) {
	b := NewOrderBook()
	b.SubmitBid(1, 40)
	b.SubmitBid(1, 42)
	if !b.Cancel(1, Buy) {
		t.Fatal("cancel reported nothing removed")
	}
	if bid, ok := b.BestBid(); !ok || bid.Price != 40 {
		t.Errorf("best bid = %+v, want earliest order at 40 retained", bid)
	}
	if b.Cancel(2, Buy) {
		t.Error("cancel for player with no orders should report false")
	}
}

func TestPruneDropsNewestFirst(t *testing.T) {
	b := NewOrderBook()
	b.SubmitBid(1, 40)
	b.SubmitBid(1, 45)
	b.SubmitBid(1, 42)
	if dropped := b.Prune(1, Buy, 1); dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	// Earliest order (price 40) is the one retained.
	if bid, ok := b.BestBid(); !ok || bid.Price != 40 {
		t.Errorf("best bid = %+v, want earliest at 40", bid)
	}
	if n := b.OpenOrders(1, Buy); n != 1 {
		t.Errorf("open orders = %d, want 1", n)
	}
}
