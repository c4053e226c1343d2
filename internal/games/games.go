// Package games implements the individual game engines. Each game type
// registers itself with the engine registry; importing this package is
// enough to make every engine available.
package games

import (
	"math/rand"

	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

// uniformAmount draws a whole-number amount uniformly from [lo, hi].
// Experiment parameters are whole currency units by convention.
func uniformAmount(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + float64(rng.Intn(int(hi-lo)+1))
}

// abstain is the default for auction games: the player is counted in
// the outcome set but places no order.
func abstain(kind string) engine.Action {
	return engine.Action{Kind: kind, Value: 0, Data: map[string]any{"abstain": true}}
}

func isAbstain(a engine.Action) bool {
	if a.Data == nil {
		return false
	}
	v, _ := a.Data["abstain"].(bool)
	return v
}
