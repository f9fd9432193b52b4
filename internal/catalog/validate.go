package catalog

import (
	"fmt"
	"strings"

	"github.com/xtding233/coinflip/internal/coin"
)

// ValidateRaw lists the semantic problems in raw. None of them stop the
// catalog from loading: bad rules fail closed, bad effects are dropped and
// out-of-range chances are clamped when rolled.
func ValidateRaw(raw RawCatalog) []string {
	var issues []string
	known := make(map[string]bool, len(raw.Coins))
	for _, c := range raw.Coins {
		known[c.Path] = true
	}

	if raw.Heads != "" && !known[raw.Heads] {
		issues = append(issues, fmt.Sprintf("heads face %q is not a coin", raw.Heads))
	}
	if raw.Tails != "" && !known[raw.Tails] {
		issues = append(issues, fmt.Sprintf("tails face %q is not a coin", raw.Tails))
	}

	for i, c := range raw.Coins {
		at := fmt.Sprintf("coins[%d]", i)
		if c.Path != "" {
			at = fmt.Sprintf("coins[%s]", c.Path)
		}
		if _, ok := coin.ParseRarity(c.Rarity); !ok {
			issues = append(issues, fmt.Sprintf("%s.rarity %q is unknown", at, c.Rarity))
		}
		if c.Condition != nil {
			issues = append(issues, validateCondition(at+".condition", *c.Condition, known)...)
			for j, p := range c.Condition.Prerequisites {
				pat := fmt.Sprintf("%s.condition.prerequisites[%d]", at, j)
				issues = append(issues, validateCondition(pat, p, known)...)
				if len(p.Prerequisites) > 0 {
					issues = append(issues, pat+".prerequisites are ignored")
				}
				// consecutive counts are kept per unlocking coin, never per prerequisite
				if coin.ConditionKind(strings.ToLower(p.Type)) == coin.ConditionCharacteristics {
					issues = append(issues, pat+" can never be met: "+p.Type+" only works as a top-level condition")
				}
			}
		}
		if c.Effect != nil {
			issues = append(issues, validateEffect(at+".effect", *c.Effect)...)
		}
	}
	return issues
}

func validateCondition(at string, rc RawCondition, known map[string]bool) []string {
	var issues []string
	if r, ok := convertRule(rc).(coin.Invalid); ok {
		return append(issues, fmt.Sprintf("%s is invalid: %s", at, r.Reason))
	}
	if rc.Rarity != "" {
		if _, ok := coin.ParseRarity(rc.Rarity); !ok {
			issues = append(issues, fmt.Sprintf("%s.rarity %q is unknown", at, rc.Rarity))
		}
	}
	if rc.Count != nil && *rc.Count < 0 {
		issues = append(issues, at+".count must be >= 0")
	}
	dangling := func(field string, p string) {
		if !known[p] {
			issues = append(issues, fmt.Sprintf("%s.%s %q is not a coin and can never be satisfied", at, field, p))
		}
	}

	switch coin.ConditionKind(strings.ToLower(rc.Type)) {
	case coin.ConditionLandOnCoin:
		dangling("path", rc.Path)
	case coin.ConditionLandOnMultipleCoins:
		if !rc.Dynamic {
			if len(rc.Paths) == 0 {
				issues = append(issues, at+".paths is empty and can never be satisfied")
			}
			for _, p := range rc.Paths {
				dangling("paths", p)
			}
		}
	case coin.ConditionRandomChance:
		if ch := *rc.Chance; !(ch >= 0 && ch <= 1) {
			issues = append(issues, fmt.Sprintf("%s.chance %v is outside [0,1] and will be clamped", at, ch))
		}
		if rc.RequiresActiveCoin {
			if rc.ActiveCoinPath == "" {
				issues = append(issues, at+".active_coin_path is required when requires_active_coin is set")
			} else {
				dangling("active_coin_path", rc.ActiveCoinPath)
			}
		}
	case coin.ConditionCharacteristics:
		if *rc.ConsecutiveCount < 0 {
			issues = append(issues, at+".consecutive_count must be >= 0")
		}
		if strings.EqualFold(rc.Filter.Type, string(coin.FilterPaths)) {
			for _, p := range rc.Filter.Paths {
				dangling("filter.paths", p)
			}
		}
	}
	return issues
}

func validateEffect(at string, re RawEffect) []string {
	if convertEffect(re) == nil && re.Type != "" && !strings.EqualFold(re.Type, string(coin.EffectNone)) {
		return []string{fmt.Sprintf("%s %q is invalid and was dropped", at, re.Type)}
	}
	var issues []string
	if re.Bias != nil && (*re.Bias < 0 || *re.Bias > 1) {
		issues = append(issues, at+".bias should be in [0,1]")
	}
	return issues
}
