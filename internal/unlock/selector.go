package unlock

import (
	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

// PickWeighted selects a candidate by rarity weight. It returns false when no
// candidate carries positive weight; callers then fall back to the explicitly
// selected coin.
func PickWeighted(candidates []coin.Definition, rng RandomSource) (coin.Definition, bool) {
	if len(candidates) == 0 {
		return coin.Definition{}, false
	}
	var total float64
	for _, c := range candidates {
		if w := c.Rarity.Weight(); w > 0 {
			total += w
		}
	}
	if !(total > 0) {
		return coin.Definition{}, false
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	u := rng.Float64() * total
	var cum float64
	last := -1
	for i, c := range candidates {
		w := c.Rarity.Weight()
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if cum >= u {
			return c, true
		}
	}
	// rounding left u just above the final cumulative weight
	return candidates[last], true
}

// RandomCandidates lists the unlocked, configured coins eligible for a
// random face.
func (e *Evaluator) RandomCandidates(st *progress.State) []coin.Definition {
	var out []coin.Definition
	for _, def := range e.cat.Coins() {
		if def.Configured() && e.IsUnlocked(def, st) {
			out = append(out, def)
		}
	}
	return out
}
