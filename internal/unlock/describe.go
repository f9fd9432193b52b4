package unlock

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

// Describe renders a short "X/Y" progress line for def. Unlocked coins read
// "Unlocked"; unknown kinds read "Locked".
func (e *Evaluator) Describe(def coin.Definition, st *progress.State) string {
	if e.IsUnlocked(def, st) {
		return "Unlocked"
	}
	if !e.PrerequisitesMet(def, st) {
		prereqs := conditionPrereqs(def.Condition)
		met := 0
		for _, p := range prereqs {
			if e.ruleMet(def.Path, p.Rule, st) {
				met++
			}
		}
		return fmt.Sprintf("Prerequisites %d/%d", met, len(prereqs))
	}

	switch r := def.Condition.Rule.(type) {
	case coin.TotalFlips:
		return fmt.Sprintf("Flips %d/%d", st.TotalFlips, r.Count)
	case coin.HeadsFlips:
		return fmt.Sprintf("Heads %d/%d", st.HeadsFlips, r.Count)
	case coin.TailsFlips:
		return fmt.Sprintf("Tails %d/%d", st.TailsFlips, r.Count)
	case coin.Streak:
		label := "Streak"
		switch r.Side {
		case coin.SideHeads:
			label = "Heads streak"
		case coin.SideTails:
			label = "Tails streak"
		}
		return fmt.Sprintf("%s %d/%d", label, streakFor(st, r.Side), r.Count)
	case coin.LandOnCoin:
		return fmt.Sprintf("Land on %s %d/%d", r.Path, min(st.CoinLandCounts[r.Path], r.Count), r.Count)
	case coin.LandOnMultipleCoins:
		paths := r.Paths
		if r.Dynamic {
			paths = e.dynamic[def.Path]
		}
		done := 0
		for _, p := range paths {
			if e.cat.Has(p) && st.CoinLandCounts[p] >= r.Count {
				done++
			}
		}
		return fmt.Sprintf("%d/%d coins landed %dx", done, len(paths), r.Count)
	case coin.RandomChance:
		pct := strconv.FormatFloat(math.Round(clampProb(r.Chance)*10000)/100, 'f', -1, 64)
		if r.RequiresActiveCoin {
			return fmt.Sprintf("%s%% chance per flip with %s active", pct, r.ActiveCoinPath)
		}
		return fmt.Sprintf("%s%% chance per flip", pct)
	case coin.LandOnCoinsWithCharacteristics:
		return fmt.Sprintf("In a row %d/%d", st.CharacteristicConsecutiveCounts[def.Path], r.ConsecutiveCount)
	default:
		return "Locked"
	}
}

// GetProgressDescription describes the coin at path, or "" if unknown.
func (t *Tracker) GetProgressDescription(path string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	def, ok := t.eval.cat.Lookup(path)
	if !ok {
		return ""
	}
	return t.eval.Describe(def, t.st)
}
