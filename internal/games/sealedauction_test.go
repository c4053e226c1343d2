package games_test

import (
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func TestSealedAuctionFirstPrice(t *testing.T) {
	f := start(t, domain.GameTypeSealedAuction, nil, 2)

	f.act(t, f.roster[0], bid(50))
	f.act(t, f.roster[1], bid(30))

	out := f.endRound(t)
	winner := f.roster[0]
	if out[winner.ID].Details["won"] != true {
		t.Fatal("highest bidder did not win")
	}
	if got := out[winner.ID].Profit; got != winner.Valuation-50 {
		t.Errorf("winner profit = %v, want valuation %v - 50", got, winner.Valuation)
	}
	if got := out[2].Profit; got != 0 {
		t.Errorf("loser profit = %v, want 0", got)
	}
}

func TestSealedAuctionSecondPrice(t *testing.T) {
	f := start(t, domain.GameTypeSealedAuction, domain.Config{"format": "second_price"}, 3)

	f.act(t, f.roster[0], bid(50))
	f.act(t, f.roster[1], bid(30))
	f.act(t, f.roster[2], bid(10))

	// The winner pays the runner-up's bid, not their own.
	out := f.endRound(t)
	winner := f.roster[0]
	if got := out[winner.ID].Details["price"]; got != 30.0 {
		t.Errorf("price = %v, want 30", got)
	}
	if got := out[winner.ID].Profit; got != winner.Valuation-30 {
		t.Errorf("winner profit = %v, want valuation %v - 30", got, winner.Valuation)
	}
}

func TestSealedAuctionNoBidsNoSale(t *testing.T) {
	f := start(t, domain.GameTypeSealedAuction, nil, 2)

	// Nobody bids before the timer; both default to abstaining.
	out := f.endRound(t)
	for _, p := range f.roster {
		if got := out[p.ID].Profit; got != 0 {
			t.Errorf("player %d profit = %v, want 0", p.ID, got)
		}
		if out[p.ID].Details["won"] != false {
			t.Errorf("player %d marked as winner with no sale", p.ID)
		}
	}
}

func TestSealedAuctionRejectsNegativeBid(t *testing.T) {
	f := start(t, domain.GameTypeSealedAuction, nil, 2)
	f.reject(t, f.roster[0], bid(-1), engine.ErrInvalidAction)
	f.reject(t, f.roster[0], decision(10), engine.ErrInvalidAction)
}
