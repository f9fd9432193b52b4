// Package effect composes the effects of the two active faces into the
// heads probability of a flip and into streak bonuses.
package effect

import (
	"math"

	"github.com/xtding233/coinflip/internal/coin"
)

const (
	BaseHeadsProbability = 0.5
	MinHeadsProbability  = 0.1
	MaxHeadsProbability  = 0.9

	// MinAutoClickIntervalMs is the floor for combo-shortened auto clicks.
	MinAutoClickIntervalMs = 100
	// additiveIntervalStepMs is what one additive multiplier point removes.
	additiveIntervalStepMs = 2000
)

// Outcome is the result of resolving one flip.
type Outcome struct {
	LandedHeads      bool
	HeadsProbability float64
	// Forced is set when an Always* effect decided the flip.
	Forced bool
}

// Resolve decides a flip from a uniform draw in [0,1). last is the side of
// the previous flip, or "" if there is none.
func Resolve(draw float64, heads, tails coin.Effect, last coin.Side) Outcome {
	alwaysHeads := isKind(heads, coin.EffectAlwaysHeads) || isKind(tails, coin.EffectAlwaysHeads)
	alwaysTails := isKind(heads, coin.EffectAlwaysTails) || isKind(tails, coin.EffectAlwaysTails)
	switch {
	case alwaysHeads && !alwaysTails:
		return Outcome{LandedHeads: true, HeadsProbability: 1, Forced: true}
	case alwaysTails && !alwaysHeads:
		return Outcome{LandedHeads: false, HeadsProbability: 0, Forced: true}
	}
	p := HeadsProbability(heads, tails, last)
	return Outcome{LandedHeads: draw < p, HeadsProbability: p}
}

// HeadsProbability combines both faces' biases plus the combo streak boost,
// clamped to [0.1, 0.9]. Always* effects are not considered here.
func HeadsProbability(heads, tails coin.Effect, last coin.Side) float64 {
	h, t := Enhance(heads, tails)

	bias := 0.0
	switch e := h.(type) {
	case coin.Weighted:
		// heavy side lands down, showing tails
		bias -= e.Bias
	case coin.Shaved:
		bias += e.Bias
	}
	switch e := t.(type) {
	case coin.Weighted:
		bias += e.Bias
	case coin.Shaved:
		bias -= e.Bias
	}
	bias += streakBoost(heads, tails, last)

	p := BaseHeadsProbability + bias
	if math.IsNaN(p) {
		return BaseHeadsProbability
	}
	return min(max(p, MinHeadsProbability), MaxHeadsProbability)
}

// Enhance returns both effects after combo amplification. A face is enhanced
// only when the opposite face is a combo and it is not one itself, so two
// combos cancel.
func Enhance(heads, tails coin.Effect) (coin.Effect, coin.Effect) {
	hc, hIsCombo := heads.(coin.Combo)
	tc, tIsCombo := tails.(coin.Combo)
	if hIsCombo && tIsCombo {
		return heads, tails
	}
	if tIsCombo {
		heads = amplify(heads, tc)
	}
	if hIsCombo {
		tails = amplify(tails, hc)
	}
	return heads, tails
}

func amplify(e coin.Effect, c coin.Combo) coin.Effect {
	switch v := e.(type) {
	case coin.Weighted:
		v.Bias = amplifyBias(v.Bias, c)
		return v
	case coin.Shaved:
		v.Bias = amplifyBias(v.Bias, c)
		return v
	case coin.AutoClick:
		v.IntervalMs = amplifyInterval(v.IntervalMs, c)
		return v
	default:
		return e
	}
}

func amplifyBias(b float64, c coin.Combo) float64 {
	switch c.Type {
	case coin.ComboAdditive:
		return b + c.Multiplier
	case coin.ComboMultiplicative:
		return b * c.Multiplier
	default:
		return b
	}
}

func amplifyInterval(ms int, c coin.Combo) int {
	out := float64(ms)
	switch c.Type {
	case coin.ComboAdditive:
		out -= c.Multiplier * additiveIntervalStepMs
	case coin.ComboMultiplicative:
		if !(c.Multiplier > 0) {
			return ms
		}
		out /= c.Multiplier
	default:
		return ms
	}
	if math.IsNaN(out) || out < MinAutoClickIntervalMs {
		return MinAutoClickIntervalMs
	}
	if out > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(out))
}

// streakBoost pushes the probability toward the previous result when exactly
// one face is a combo and the other face has no effect at all.
func streakBoost(heads, tails coin.Effect, last coin.Side) float64 {
	c, ok := soloCombo(heads, tails, func(other coin.Effect) bool { return other == nil })
	if !ok {
		return 0
	}
	var mag float64
	switch c.Type {
	case coin.ComboAdditive:
		mag = c.Multiplier
	case coin.ComboMultiplicative:
		mag = 0.5 * (c.Multiplier - 1)
	default:
		return 0
	}
	switch last {
	case coin.SideHeads:
		return mag
	case coin.SideTails:
		return -mag
	default:
		return 0
	}
}

// soloCombo returns the combo when exactly one face carries one and the
// opposite face satisfies qualifies.
func soloCombo(heads, tails coin.Effect, qualifies func(other coin.Effect) bool) (coin.Combo, bool) {
	hc, hIsCombo := heads.(coin.Combo)
	tc, tIsCombo := tails.(coin.Combo)
	switch {
	case hIsCombo && !tIsCombo && qualifies(tails):
		return hc, true
	case tIsCombo && !hIsCombo && qualifies(heads):
		return tc, true
	default:
		return coin.Combo{}, false
	}
}

func isKind(e coin.Effect, k coin.EffectKind) bool {
	return coin.KindOf(e) == k
}
