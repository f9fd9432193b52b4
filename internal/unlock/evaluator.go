package unlock

import (
	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

// Evaluator decides unlock status from a coin's condition and a progress
// snapshot. It never fails: anything it cannot resolve stays locked.
type Evaluator struct {
	cat *coin.Catalog
	// dynamic holds the expanded path list of every dynamic
	// LandOnMultipleCoins coin, computed once at construction.
	dynamic map[string][]string
}

func NewEvaluator(cat *coin.Catalog) *Evaluator {
	e := &Evaluator{cat: cat, dynamic: make(map[string][]string)}
	for _, def := range cat.Coins() {
		if !needsDynamicList(def.Condition) {
			continue
		}
		var paths []string
		for _, other := range cat.Coins() {
			if other.Path != def.Path && other.Unlockable() {
				paths = append(paths, other.Path)
			}
		}
		e.dynamic[def.Path] = paths
	}
	return e
}

func needsDynamicList(c *coin.Condition) bool {
	if c == nil {
		return false
	}
	if r, ok := c.Rule.(coin.LandOnMultipleCoins); ok && r.Dynamic {
		return true
	}
	for _, p := range c.Prerequisites {
		if r, ok := p.Rule.(coin.LandOnMultipleCoins); ok && r.Dynamic {
			return true
		}
	}
	return false
}

// Catalog returns the catalog the evaluator was built for.
func (e *Evaluator) Catalog() *coin.Catalog { return e.cat }

// IsUnlocked reports whether def is unlocked in st. A coin that has been
// stamped as unlocked stays unlocked even if a resettable counter later
// drops below its threshold.
func (e *Evaluator) IsUnlocked(def coin.Definition, st *progress.State) bool {
	if def.Condition.Kind() == coin.ConditionNone && len(conditionPrereqs(def.Condition)) == 0 {
		return true
	}
	if st == nil {
		return false
	}
	if _, ok := st.CoinUnlockTimestamps[def.Path]; ok {
		return true
	}
	if !e.PrerequisitesMet(def, st) {
		return false
	}
	return e.ruleMet(def.Path, def.Condition.Rule, st)
}

// IsPathUnlocked looks path up in the catalog; unknown paths are locked.
func (e *Evaluator) IsPathUnlocked(path string, st *progress.State) bool {
	def, ok := e.cat.Lookup(path)
	if !ok {
		return false
	}
	return e.IsUnlocked(def, st)
}

// PrerequisitesMet reports whether every prerequisite of def holds. Only the
// prerequisite's own rule is checked; its nested prerequisites are ignored.
func (e *Evaluator) PrerequisitesMet(def coin.Definition, st *progress.State) bool {
	for _, p := range conditionPrereqs(def.Condition) {
		if !e.ruleMet(def.Path, p.Rule, st) {
			return false
		}
	}
	return true
}

func conditionPrereqs(c *coin.Condition) []coin.Condition {
	if c == nil {
		return nil
	}
	return c.Prerequisites
}

// ruleMet evaluates a single rule on behalf of the coin at self.
func (e *Evaluator) ruleMet(self string, rule coin.Rule, st *progress.State) bool {
	if st == nil {
		return false
	}
	switch r := rule.(type) {
	case nil, coin.NoRule:
		return true
	case coin.TotalFlips:
		return st.TotalFlips >= r.Count
	case coin.HeadsFlips:
		return st.HeadsFlips >= r.Count
	case coin.TailsFlips:
		return st.TailsFlips >= r.Count
	case coin.Streak:
		return streakFor(st, r.Side) >= r.Count
	case coin.LandOnCoin:
		if !e.cat.Has(r.Path) {
			return false
		}
		return st.CoinLandCounts[r.Path] >= r.Count
	case coin.LandOnMultipleCoins:
		paths := r.Paths
		if r.Dynamic {
			paths = e.dynamic[self]
		}
		if len(paths) == 0 {
			return false
		}
		for _, p := range paths {
			if !e.cat.Has(p) || st.CoinLandCounts[p] < r.Count {
				return false
			}
		}
		return true
	case coin.RandomChance:
		return st.RandomUnlockedCoins.Has(self)
	case coin.LandOnCoinsWithCharacteristics:
		return st.CharacteristicConsecutiveCounts[self] >= r.ConsecutiveCount
	default:
		// coin.Invalid and anything unknown
		return false
	}
}

func streakFor(st *progress.State, side coin.Side) int {
	switch side {
	case coin.SideHeads:
		return st.LongestHeadsStreak
	case coin.SideTails:
		return st.LongestTailsStreak
	default:
		return st.LongestStreak
	}
}

// Snapshot evaluates every catalog coin, indexed by declaration order.
func (e *Evaluator) Snapshot(st *progress.State) []bool {
	coins := e.cat.Coins()
	out := make([]bool, len(coins))
	for i, def := range coins {
		out[i] = e.IsUnlocked(def, st)
	}
	return out
}

// Unlocked returns the catalog coins currently unlocked, in order.
func (e *Evaluator) Unlocked(st *progress.State) []coin.Definition {
	var out []coin.Definition
	for _, def := range e.cat.Coins() {
		if e.IsUnlocked(def, st) {
			out = append(out, def)
		}
	}
	return out
}
