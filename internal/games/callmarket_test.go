package games_test

import (
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func TestCallMarketClearsAtUniformPrice(t *testing.T) {
	f := start(t, domain.GameTypeCallMarket, nil, 4)

	// Roles alternate: players 1 and 3 buy, players 2 and 4 sell.
	f.act(t, f.roster[0], bid(90))
	f.act(t, f.roster[1], ask(40))
	f.act(t, f.roster[2], bid(70))
	res := f.act(t, f.roster[3], ask(60))
	if !res.Complete {
		t.Error("round should complete on the last order")
	}

	// Ranked bids 90, 70 against asks 40, 60: both pairs cross, the
	// marginal pair midpoint is (70 + 60) / 2 = 65.
	out := f.endRound(t)
	for _, p := range f.roster {
		if out[p.ID].Details["traded"] != true {
			t.Fatalf("player %d did not trade", p.ID)
		}
		if got := out[p.ID].Details["price"]; got != 65.0 {
			t.Fatalf("player %d price = %v, want 65", p.ID, got)
		}
	}
	if got := out[1].Profit; got != f.roster[0].Valuation-65 {
		t.Errorf("buyer profit = %v, want %v - 65", got, f.roster[0].Valuation)
	}
	if got := out[2].Profit; got != 65-f.roster[1].Valuation {
		t.Errorf("seller profit = %v, want 65 - %v", got, f.roster[1].Valuation)
	}
}

func TestCallMarketExcludesExtramarginalOrders(t *testing.T) {
	f := start(t, domain.GameTypeCallMarket, nil, 4)

	// The second bid is below every ask: only one pair trades.
	f.act(t, f.roster[0], bid(80))
	f.act(t, f.roster[1], ask(50))
	f.act(t, f.roster[2], bid(30))
	f.act(t, f.roster[3], ask(70))

	out := f.endRound(t)
	if out[1].Details["traded"] != true || out[2].Details["traded"] != true {
		t.Error("marginal pair did not trade")
	}
	if out[3].Details["traded"] != false || out[4].Details["traded"] != false {
		t.Error("extramarginal orders traded")
	}
	if got := out[3].Profit; got != 0 {
		t.Errorf("untraded buyer profit = %v, want 0", got)
	}
}

func TestCallMarketEnforcesRoles(t *testing.T) {
	f := start(t, domain.GameTypeCallMarket, nil, 2)
	f.reject(t, f.roster[0], ask(50), engine.ErrWrongRole)
	f.reject(t, f.roster[1], bid(50), engine.ErrWrongRole)
	f.act(t, f.roster[0], bid(50))
	f.act(t, f.roster[1], ask(40))
}
