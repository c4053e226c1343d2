package games_test

import (
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func TestCournotPayoffs(t *testing.T) {
	f := start(t, domain.GameTypeCournot, nil, 2)

	// Quantities 20 and 30: price = 100 - 50 = 50, margin 40 per unit.
	f.act(t, f.roster[0], decision(20))
	res := f.act(t, f.roster[1], decision(30))
	if !res.Complete {
		t.Error("round should complete on the second quantity")
	}

	out := f.endRound(t)
	if got := out[1].Profit; got != 800 {
		t.Errorf("player 1 profit = %v, want 800", got)
	}
	if got := out[2].Profit; got != 1200 {
		t.Errorf("player 2 profit = %v, want 1200", got)
	}
	if got := out[1].Details["market_price"]; got != 50.0 {
		t.Errorf("market price = %v, want 50", got)
	}
}

func TestCournotPriceFloorsAtZero(t *testing.T) {
	f := start(t, domain.GameTypeCournot, nil, 3)
	for _, p := range f.roster {
		f.act(t, p, decision(50))
	}

	// Total 150 swamps demand: price 0, every unit loses the unit cost.
	out := f.endRound(t)
	for _, p := range f.roster {
		if got := out[p.ID].Profit; got != -500 {
			t.Errorf("player %d profit = %v, want -500", p.ID, got)
		}
	}
}

func TestCournotRejectsOverCapacity(t *testing.T) {
	f := start(t, domain.GameTypeCournot, nil, 2)
	f.reject(t, f.roster[0], decision(51), engine.ErrInvalidAction)
	f.reject(t, f.roster[0], bid(10), engine.ErrInvalidAction)
}
