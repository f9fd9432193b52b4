package unlock

import (
	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

// Landing describes the flip that was just resolved.
type Landing struct {
	Path      string
	IsHeads   bool
	HeadsPath string
	TailsPath string
}

// UpdateCharacteristicCounts advances or resets the consecutive counter of
// every characteristic-filter coin. Coins that are already unlocked, or whose
// prerequisites do not hold yet, keep their counter untouched.
func (e *Evaluator) UpdateCharacteristicCounts(st *progress.State, l Landing) {
	for _, def := range e.cat.Coins() {
		if def.Condition == nil {
			continue
		}
		r, ok := def.Condition.Rule.(coin.LandOnCoinsWithCharacteristics)
		if !ok {
			continue
		}
		if e.IsUnlocked(def, st) || !e.PrerequisitesMet(def, st) {
			continue
		}
		if e.landingMatches(r, l) {
			st.CharacteristicConsecutiveCounts[def.Path]++
		} else {
			st.CharacteristicConsecutiveCounts[def.Path] = 0
		}
	}
}

func (e *Evaluator) landingMatches(r coin.LandOnCoinsWithCharacteristics, l Landing) bool {
	if !e.pathMatches(r.Filter, l.Path) {
		return false
	}
	switch r.Side {
	case coin.RequireHeads:
		return l.IsHeads
	case coin.RequireTails:
		return !l.IsHeads
	case coin.RequireBoth:
		return e.pathMatches(r.Filter, l.HeadsPath) && e.pathMatches(r.Filter, l.TailsPath)
	default:
		return true
	}
}

// pathMatches fails closed for coins outside the catalog.
func (e *Evaluator) pathMatches(f coin.Filter, path string) bool {
	def, ok := e.cat.Lookup(path)
	if !ok {
		return false
	}
	return f.Matches(def)
}
