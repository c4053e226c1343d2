package games_test

import (
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func TestPublicGoodsPayoffs(t *testing.T) {
	f := start(t, domain.GameTypePublicGoods, nil, 3)

	// Contributions 10, 5, 0: pool 15 * 1.6 / 3 = 8 back to everyone.
	contributions := []float64{10, 5, 0}
	for i, p := range f.roster {
		res := f.act(t, p, decision(contributions[i]))
		if wantComplete := i == 2; res.Complete != wantComplete {
			t.Errorf("player %d: complete = %v, want %v", p.ID, res.Complete, wantComplete)
		}
	}

	out := f.endRound(t)
	wantProfit := []float64{18, 23, 28}
	for i, p := range f.roster {
		if got := out[p.ID].Profit; got != wantProfit[i] {
			t.Errorf("player %d profit = %v, want %v", p.ID, got, wantProfit[i])
		}
	}
}

func TestPublicGoodsRejectsOutOfRange(t *testing.T) {
	f := start(t, domain.GameTypePublicGoods, domain.Config{"endowment": 10.0}, 2)
	f.reject(t, f.roster[0], decision(11), engine.ErrInvalidAction)
	f.reject(t, f.roster[0], decision(-1), engine.ErrInvalidAction)
	f.act(t, f.roster[0], decision(10))
}

func TestPublicGoodsFreeRiderDefault(t *testing.T) {
	f := start(t, domain.GameTypePublicGoods, nil, 2)
	f.act(t, f.roster[0], decision(20))

	// The absentee contributes nothing but still shares the pool.
	out := f.endRound(t)
	if got := out[1].Profit; got != 16 {
		t.Errorf("contributor profit = %v, want 16", got)
	}
	if got := out[2].Profit; got != 36 {
		t.Errorf("free rider profit = %v, want 36", got)
	}
	if out[2].Details["defaulted"] != true {
		t.Error("absentee not marked defaulted")
	}
}
