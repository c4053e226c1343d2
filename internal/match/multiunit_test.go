package match

import (
	"math/rand"
	"testing"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestDiscriminativePayOwnBid(t *testing.T) {
	bids := []Bid{{1, 100}, {2, 80}, {3, 60}, {4, 40}}
	awards := Discriminative(bids, 2, testRand())
	if len(awards) != 2 {
		t.Fatalf("awards = %d, want 2", len(awards))
	}
	pays := map[int64]float64{}
	for _, a := range awards {
		pays[a.PlayerID] = a.Pay
	}
	if pays[1] != 100 || pays[2] != 80 {
		t.Errorf("winners pay %v, want own bids 100 and 80", pays)
	}
}

func TestDiscriminativeCutoffTie(t *testing.T) {
	bids := []Bid{{1, 100}, {2, 80}, {3, 80}, {4, 80}}
	counts := map[int64]int{}
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		awards := Discriminative(bids, 2, rng)
		if len(awards) != 2 {
			t.Fatalf("awards = %d, want 2", len(awards))
		}
		if awards[0].PlayerID != 1 {
			t.Fatalf("bidder 1 above the cutoff must always win")
		}
		counts[awards[1].PlayerID]++
	}
	// Each tied bidder should win sometimes under random tie-breaks.
	for _, id := range []int64{2, 3, 4} {
		if counts[id] == 0 {
			t.Errorf("tied bidder %d never won across seeds", id)
		}
	}
}

func TestDiscriminativeFewerBidsThanUnits(t *testing.T) {
	awards := Discriminative([]Bid{{1, 50}}, 3, testRand())
	if len(awards) != 1 || awards[0].Pay != 50 {
		t.Errorf("awards = %+v, want single winner paying 50", awards)
	}
}

func TestGSP(t *testing.T) {
	bids := []Bid{{1, 10}, {2, 8}, {3, 5}}
	awards := GSP(bids, []float64{100, 70})
	if len(awards) != 2 {
		t.Fatalf("awards = %d, want 2", len(awards))
	}
	// Position 1 pays the second bid per click, position 2 the third.
	if awards[0].PlayerID != 1 || awards[0].Position != 1 || awards[0].Pay != 8*100 {
		t.Errorf("position 1 = %+v, want player 1 paying 800", awards[0])
	}
	if awards[1].PlayerID != 2 || awards[1].Position != 2 || awards[1].Pay != 5*70 {
		t.Errorf("position 2 = %+v, want player 2 paying 350", awards[1])
	}
}

func TestGSPLowestPositionPaysZeroWithoutNextBidder(t *testing.T) {
	awards := GSP([]Bid{{1, 10}, {2, 8}}, []float64{100, 70, 40})
	if len(awards) != 2 {
		t.Fatalf("awards = %d, want 2", len(awards))
	}
	if awards[1].Pay != 0 {
		t.Errorf("last filled position pay = %v, want 0", awards[1].Pay)
	}
}

func TestGeometricWeights(t *testing.T) {
	w := GeometricWeights(3, 100, 0.7)
	want := []float64{100, 70, 49}
	for i := range want {
		if w[i] != want[i] {
			t.Errorf("weight[%d] = %v, want %v", i, w[i], want[i])
		}
	}
}
