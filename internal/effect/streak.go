package effect

import (
	"math"

	"github.com/xtding233/coinflip/internal/coin"
)

// ApplyComboStreakBonus adjusts the running streak when exactly one face is a
// combo and the opposite face has no Weighted, Shaved or AutoClick effect to
// amplify. This is a looser trigger than the probability boost in
// HeadsProbability, which requires the opposite face to have no effect.
// The result never drops below zero.
func ApplyComboStreakBonus(heads, tails coin.Effect, streak int) int {
	c, ok := soloCombo(heads, tails, func(other coin.Effect) bool { return !amplifiable(other) })
	if !ok {
		return streak
	}
	var out float64
	switch c.Type {
	case coin.ComboAdditive:
		out = float64(streak) + math.Round(c.Multiplier*100)
	case coin.ComboMultiplicative:
		out = math.Round(float64(streak) * c.Multiplier)
	default:
		return streak
	}
	if math.IsNaN(out) || out < 0 {
		return 0
	}
	if out > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(out)
}

func amplifiable(e coin.Effect) bool {
	switch e.(type) {
	case coin.Weighted, coin.Shaved, coin.AutoClick:
		return true
	default:
		return false
	}
}

// AutoClickInterval returns the shortest enhanced auto-click interval across
// both faces, or 0 when neither face auto-clicks.
func AutoClickInterval(heads, tails coin.Effect) int {
	h, t := Enhance(heads, tails)
	best := 0
	for _, e := range []coin.Effect{h, t} {
		ac, ok := e.(coin.AutoClick)
		if !ok || ac.IntervalMs <= 0 {
			continue
		}
		if best == 0 || ac.IntervalMs < best {
			best = ac.IntervalMs
		}
	}
	return best
}

// ChanceMultiplier folds the faces' random-chance Luck effects into the
// multiplier used by chance rolls: 1 plus the sum of modifiers, floored at 0.
func ChanceMultiplier(heads, tails coin.Effect) float64 {
	m := 1.0
	for _, e := range []coin.Effect{heads, tails} {
		if l, ok := e.(coin.Luck); ok && l.Type == coin.LuckRandomChance {
			m += l.Modifier
		}
	}
	if math.IsNaN(m) || m < 0 {
		return 0
	}
	return m
}
