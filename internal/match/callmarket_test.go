package match

import "testing"

func TestClearCallMarket(t *testing.T) {
	bids := []CallOrder{{PlayerID: 1, Price: 90}, {PlayerID: 2, Price: 70}, {PlayerID: 3, Price: 50}}
	asks := []CallOrder{{PlayerID: 4, Price: 40}, {PlayerID: 5, Price: 60}, {PlayerID: 6, Price: 80}}

	res := ClearCallMarket(bids, asks, 1)
	if res.Quantity != 2 {
		t.Fatalf("Q* = %d, want 2", res.Quantity)
	}
	// Midpoint of marginal bid 70 and marginal ask 60.
	if res.Price != 65 {
		t.Errorf("clearing price = %v, want 65", res.Price)
	}
	if len(res.Buyers) != 2 || res.Buyers[0] != 1 || res.Buyers[1] != 2 {
		t.Errorf("buyers = %v, want [1 2]", res.Buyers)
	}
	if len(res.Sellers) != 2 || res.Sellers[0] != 4 || res.Sellers[1] != 5 {
		t.Errorf("sellers = %v, want [4 5]", res.Sellers)
	}
}

func TestClearCallMarketPriceBetweenMarginalPair(t *testing.T) {
	bids := []CallOrder{{1, 100}, {2, 55}}
	asks := []CallOrder{{3, 10}, {4, 50}}
	res := ClearCallMarket(bids, asks, 0)
	if res.Quantity != 2 {
		t.Fatalf("Q* = %d, want 2", res.Quantity)
	}
	if res.Price < 50 || res.Price > 55 {
		t.Errorf("clearing price %v outside marginal pair [50,55]", res.Price)
	}
}

func TestClearCallMarketNoCross(t *testing.T) {
	bids := []CallOrder{{1, 30}}
	asks := []CallOrder{{2, 40}}
	res := ClearCallMarket(bids, asks, 1)
	if res.Quantity != 0 || res.Price != 0 {
		t.Errorf("expected no trades, got %+v", res)
	}
}

func TestClearCallMarketTickRounding(t *testing.T) {
	bids := []CallOrder{{1, 71}}
	asks := []CallOrder{{2, 60}}
	// Midpoint 65.5 rounds to 66 on a tick of 1.
	res := ClearCallMarket(bids, asks, 1)
	if res.Price != 66 {
		t.Errorf("clearing price = %v, want 66", res.Price)
	}
}

func TestClearCallMarketEmptySides(t *testing.T) {
	if res := ClearCallMarket(nil, []CallOrder{{1, 10}}, 1); res.Quantity != 0 {
		t.Errorf("no bids should clear nothing, got %+v", res)
	}
	if res := ClearCallMarket([]CallOrder{{1, 10}}, nil, 1); res.Quantity != 0 {
		t.Errorf("no asks should clear nothing, got %+v", res)
	}
}
