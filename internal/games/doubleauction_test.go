package games_test

import (
	"context"
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func cancel(side string) engine.Action {
	return engine.Action{Kind: domain.SubmissionCancel, Data: map[string]any{"side": side}}
}

func TestDoubleAuctionTradeAtRestingPrice(t *testing.T) {
	f := start(t, domain.GameTypeDoubleAuction, nil, 2)

	// The ask rests at 50; the crossing bid at 60 trades at the resting
	// price, not the incoming one.
	res := f.act(t, f.roster[1], ask(50))
	if res.Complete {
		t.Error("round complete with no trades")
	}
	res = f.act(t, f.roster[0], bid(60))
	if !res.Complete {
		t.Error("round should complete once every unit has traded")
	}

	trades := f.notes.ByType("trade")
	if len(trades) != 1 {
		t.Fatalf("got %d trade events, want 1", len(trades))
	}
	if got := trades[0].Event.Payload["price"]; got != 50.0 {
		t.Errorf("trade price = %v, want resting 50", got)
	}

	out := f.endRound(t)
	if got := out[1].Profit; got != f.roster[0].Valuation-50 {
		t.Errorf("buyer profit = %v, want %v - 50", got, f.roster[0].Valuation)
	}
	if got := out[2].Profit; got != 50-f.roster[1].Valuation {
		t.Errorf("seller profit = %v, want 50 - %v", got, f.roster[1].Valuation)
	}
	if got := out[1].Details["units_traded"]; got != 1 {
		t.Errorf("buyer units_traded = %v, want 1", got)
	}
}

func TestDoubleAuctionCancelRemovesStandingOrder(t *testing.T) {
	f := start(t, domain.GameTypeDoubleAuction, nil, 2)

	f.act(t, f.roster[1], ask(55))
	f.act(t, f.roster[1], cancel("ask"))
	f.act(t, f.roster[0], bid(60))

	if got := len(f.notes.ByType("trade")); got != 0 {
		t.Fatalf("got %d trades against a cancelled order, want 0", got)
	}
	out := f.endRound(t)
	if got := out[1].Profit; got != 0 {
		t.Errorf("buyer profit = %v, want 0 with no trade", got)
	}
}

func TestDoubleAuctionRejectsAfterCapacity(t *testing.T) {
	f := start(t, domain.GameTypeDoubleAuction, nil, 2)
	f.act(t, f.roster[1], ask(50))
	f.act(t, f.roster[0], bid(60))

	// Both sides have traded their single unit.
	f.reject(t, f.roster[0], bid(70), engine.ErrInvalidAction)
	f.reject(t, f.roster[1], ask(45), engine.ErrInvalidAction)
}

func TestDoubleAuctionEnforcesSides(t *testing.T) {
	f := start(t, domain.GameTypeDoubleAuction, nil, 2)
	f.reject(t, f.roster[0], ask(50), engine.ErrWrongRole)
	f.reject(t, f.roster[1], bid(50), engine.ErrWrongRole)
}

func TestDoubleAuctionReplayReproducesTrades(t *testing.T) {
	f := start(t, domain.GameTypeDoubleAuction, nil, 4)

	f.act(t, f.roster[1], ask(45)) // rests
	f.act(t, f.roster[3], ask(55)) // rests behind it
	f.act(t, f.roster[0], bid(50)) // takes the 45 ask
	f.act(t, f.roster[2], bid(58)) // takes the 55 ask

	// Drop the book, as a process restart would, and resolve from the
	// persisted submission log alone.
	f.deps.State.Release(f.round.ID)

	out := f.endRound(t)
	if got := out[1].Profit; got != f.roster[0].Valuation-45 {
		t.Errorf("first buyer profit = %v, want %v - 45", got, f.roster[0].Valuation)
	}
	if got := out[2].Profit; got != 45-f.roster[1].Valuation {
		t.Errorf("first seller profit = %v, want 45 - %v", got, f.roster[1].Valuation)
	}
	if got := out[3].Profit; got != f.roster[2].Valuation-55 {
		t.Errorf("second buyer profit = %v, want %v - 55", got, f.roster[2].Valuation)
	}
	if got := out[4].Profit; got != 55-f.roster[3].Valuation {
		t.Errorf("second seller profit = %v, want 55 - %v", got, f.roster[3].Valuation)
	}
}

func TestDoubleAuctionStateSnapshot(t *testing.T) {
	f := start(t, domain.GameTypeDoubleAuction, nil, 2)
	f.act(t, f.roster[0], bid(42))

	snap, err := f.game.GameState(context.Background(), f.round, f.roster[0].ID)
	if err != nil {
		t.Fatalf("game state: %v", err)
	}
	book, ok := snap["book"].(map[string]any)
	if !ok {
		t.Fatal("snapshot has no book")
	}
	if got := book["best_bid"]; got != 42.0 {
		t.Errorf("best_bid = %v, want 42", got)
	}
	if got := snap["my_open_bids"]; got != 1 {
		t.Errorf("my_open_bids = %v, want 1", got)
	}
}
