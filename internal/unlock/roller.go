package unlock

import (
	"time"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

// Roller performs the per-flip chance rolls for RandomChance coins.
type Roller struct {
	eval *Evaluator
	rng  RandomSource
	now  func() time.Time
}

// NewRoller uses the crypto RNG and wall clock when rng or now is nil.
func NewRoller(eval *Evaluator, rng RandomSource, now func() time.Time) *Roller {
	if rng == nil {
		rng = DefaultRNG()
	}
	if now == nil {
		now = time.Now
	}
	return &Roller{eval: eval, rng: rng, now: now}
}

// EffectiveChance scales chance by multiplier and clamps to [0,1].
func EffectiveChance(chance, multiplier float64) float64 {
	return clampProb(chance * multiplier)
}

// TryRandomUnlocks rolls every locked RandomChance coin whose prerequisites
// hold. A coin gated on an active coin is only rolled while that coin is on a
// face, and gets two independent trials when it is on both faces. Winners are
// recorded in st and returned in catalog order.
func (r *Roller) TryRandomUnlocks(st *progress.State, chanceMultiplier float64, headsPath, tailsPath string) []coin.Definition {
	var won []coin.Definition
	for _, def := range r.eval.cat.Coins() {
		if def.Condition == nil {
			continue
		}
		rc, ok := def.Condition.Rule.(coin.RandomChance)
		if !ok {
			continue
		}
		if st.RandomUnlockedCoins.Has(def.Path) || r.eval.IsUnlocked(def, st) {
			continue
		}
		if !r.eval.PrerequisitesMet(def, st) {
			continue
		}

		trials := 1
		if rc.RequiresActiveCoin {
			onHeads := rc.ActiveCoinPath != "" && rc.ActiveCoinPath == headsPath
			onTails := rc.ActiveCoinPath != "" && rc.ActiveCoinPath == tailsPath
			switch {
			case onHeads && onTails:
				trials = 2
			case onHeads || onTails:
				trials = 1
			default:
				continue
			}
		}

		p := EffectiveChance(rc.Chance, chanceMultiplier)
		hit := false
		for i := 0; i < trials; i++ {
			// every trial consumes its draw so replays stay aligned
			if draw(p, r.rng) {
				hit = true
			}
		}
		if !hit {
			continue
		}
		st.RandomUnlockedCoins.Add(def.Path)
		st.CoinUnlockTimestamps[def.Path] = r.now().UTC()
		won = append(won, def)
	}
	return won
}
