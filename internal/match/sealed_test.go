package match

import (
	"math/rand"
	"testing"
)

func TestSealedFirstPrice(t *testing.T) {
	res, ok := SealedAuction([]Bid{{1, 55}, {2, 70}, {3, 30}}, FormatFirstPrice, testRand())
	if !ok {
		t.Fatal("auction with bids reported no result")
	}
	if res.WinnerID != 2 || res.Price != 70 {
		t.Errorf("result = %+v, want winner 2 paying own bid 70", res)
	}
}

func TestSealedSecondPrice(t *testing.T) {
	res, ok := SealedAuction([]Bid{{1, 55}, {2, 70}, {3, 30}}, FormatSecondPrice, testRand())
	if !ok {
		t.Fatal("auction with bids reported no result")
	}
	if res.WinnerID != 2 || res.Price != 55 {
		t.Errorf("result = %+v, want winner 2 paying 55", res)
	}
}

func TestSealedSingleBidder(t *testing.T) {
	res, _ := SealedAuction([]Bid{{1, 40}}, FormatSecondPrice, testRand())
	if res.WinnerID != 1 || res.Price != 0 {
		t.Errorf("result = %+v, want winner 1 paying 0", res)
	}
}

func TestSealedTieRandomWinner(t *testing.T) {
	counts := map[int64]int{}
	for seed := int64(0); seed < 100; seed++ {
		rng := rand.New(rand.NewSource(seed))
		res, _ := SealedAuction([]Bid{{1, 60}, {2, 60}, {3, 10}}, FormatSecondPrice, rng)
		counts[res.WinnerID]++
		// Tied top bids make the second price equal to the top bid.
		if res.Price != 60 {
			t.Fatalf("second price with tied tops = %v, want 60", res.Price)
		}
	}
	if counts[1] == 0 || counts[2] == 0 {
		t.Errorf("tied bidders should both win across seeds: %v", counts)
	}
	if counts[3] != 0 {
		t.Errorf("bidder 3 won %d times with a losing bid", counts[3])
	}
}

func TestSealedNoBids(t *testing.T) {
	if _, ok := SealedAuction(nil, FormatFirstPrice, testRand()); ok {
		t.Error("empty auction reported a winner")
	}
}
