package games_test

import (
	"testing"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

func shipping(choice string) engine.Action {
	return engine.Action{Kind: "shipping", Data: map[string]any{"choice": choice}}
}

func patrol(choice string) engine.Action {
	return engine.Action{Kind: "patrol", Data: map[string]any{"choice": choice}}
}

func TestHarborTradeInspection(t *testing.T) {
	f := start(t, domain.GameTypeHarborTrade, nil, 3)

	// Round 1: player 1 is the officer. One trader ships, one stays
	// local, and the officer inspects.
	f.act(t, f.roster[1], shipping("ship"))
	res := f.act(t, f.roster[2], shipping("local"))
	if res.Complete {
		t.Error("round complete with a ship awaiting the officer")
	}

	watch := f.notes.ByType("harbor_watch")
	if len(watch) != 1 {
		t.Fatalf("got %d harbor_watch events, want 1", len(watch))
	}
	if !watch[0].Audience.Contains(1) || watch[0].Audience.All {
		t.Error("harbor_watch not addressed to the officer alone")
	}
	if got := watch[0].Event.Payload["ships"]; got != 1 {
		t.Errorf("ships = %v, want 1", got)
	}

	res = f.act(t, f.roster[0], patrol("inspect"))
	if !res.Complete {
		t.Error("round should complete on the patrol call")
	}

	out := f.endRound(t)
	if got := out[1].Profit; got != 18 {
		t.Errorf("officer profit = %v, want base 10 + reward 8", got)
	}
	if got := out[2].Profit; got != -5 {
		t.Errorf("inspected shipper profit = %v, want -5", got)
	}
	if got := out[3].Profit; got != 10 {
		t.Errorf("local trader profit = %v, want 10", got)
	}
}

func TestHarborTradeBlindEye(t *testing.T) {
	f := start(t, domain.GameTypeHarborTrade, nil, 3)

	f.act(t, f.roster[1], shipping("ship"))
	f.act(t, f.roster[2], shipping("ship"))
	f.act(t, f.roster[0], patrol("blind_eye"))

	out := f.endRound(t)
	if got := out[1].Profit; got != 20 {
		t.Errorf("officer profit = %v, want base 10 + two bribes", got)
	}
	for _, id := range []int64{2, 3} {
		if got := out[id].Profit; got != 25 {
			t.Errorf("shipper %d profit = %v, want 30 - 5", id, got)
		}
	}
}

func TestHarborTradeSkipsWatchWhenNobodyShips(t *testing.T) {
	f := start(t, domain.GameTypeHarborTrade, nil, 3)

	f.act(t, f.roster[1], shipping("local"))
	res := f.act(t, f.roster[2], shipping("local"))
	if !res.Complete {
		t.Error("round with no ships should complete without a watch stage")
	}

	out := f.endRound(t)
	if got := out[1].Profit; got != 10 {
		t.Errorf("officer profit = %v, want base 10", got)
	}
	summaries := f.notes.ByType("round_summary")
	if len(summaries) != 1 {
		t.Fatalf("got %d round_summary events, want 1", len(summaries))
	}
	if got := summaries[0].Event.Payload["patrol"]; got != "idle" {
		t.Errorf("patrol = %v, want idle with an empty harbor", got)
	}
}

func TestHarborTradeAbsentOfficerTurnsBlindEye(t *testing.T) {
	f := start(t, domain.GameTypeHarborTrade, nil, 3)

	f.act(t, f.roster[1], shipping("ship"))
	f.act(t, f.roster[2], shipping("local"))

	// The officer never calls; the shipment slips through for the
	// usual consideration.
	out := f.endRound(t)
	if got := out[2].Profit; got != 25 {
		t.Errorf("shipper profit = %v, want 30 - 5 under the default", got)
	}
	if got := out[1].Profit; got != 15 {
		t.Errorf("officer profit = %v, want base 10 + bribe 5", got)
	}
}

func TestHarborTradeRoleAndPhaseChecks(t *testing.T) {
	f := start(t, domain.GameTypeHarborTrade, nil, 3)

	f.reject(t, f.roster[0], shipping("ship"), engine.ErrWrongRole)
	f.reject(t, f.roster[0], patrol("inspect"), engine.ErrWrongPhase)
	f.reject(t, f.roster[1], shipping("smuggle"), engine.ErrInvalidAction)

	f.act(t, f.roster[1], shipping("ship"))
	f.reject(t, f.roster[1], shipping("local"), engine.ErrAlreadySubmitted)
	f.act(t, f.roster[2], shipping("local"))

	// Watch stage: traders cannot patrol.
	f.reject(t, f.roster[1], patrol("inspect"), engine.ErrWrongRole)
	f.act(t, f.roster[0], patrol("inspect"))
	f.reject(t, f.roster[0], patrol("blind_eye"), engine.ErrAlreadySubmitted)
}
