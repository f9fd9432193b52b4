package catalog

import (
	"fmt"
	"strings"

	"github.com/xtding233/coinflip/internal/coin"
)

func convertCoin(rc RawCoin) coin.Definition {
	rarity, ok := coin.ParseRarity(rc.Rarity)
	if !ok {
		// unknown tiers weigh nothing in random selection
		rarity = coin.Rarity(rc.Rarity)
	}
	def := coin.Definition{Path: rc.Path, Rarity: rarity}
	if rc.Condition != nil {
		c := convertCondition(*rc.Condition, true)
		def.Condition = &c
	}
	if rc.Effect != nil {
		def.Effect = convertEffect(*rc.Effect)
	}
	return def
}

func convertCondition(rc RawCondition, top bool) coin.Condition {
	r, _ := coin.ParseRarity(rc.Rarity)
	c := coin.Condition{Rule: convertRule(rc), Rarity: r}
	// prerequisites are only evaluated one level deep
	if top {
		for _, p := range rc.Prerequisites {
			c.Prerequisites = append(c.Prerequisites, convertCondition(p, false))
		}
	}
	return c
}

func convertRule(rc RawCondition) coin.Rule {
	switch coin.ConditionKind(strings.ToLower(rc.Type)) {
	case coin.ConditionNone, "":
		return coin.NoRule{}
	case coin.ConditionTotalFlips:
		if rc.Count == nil {
			return missing(rc, "count")
		}
		return coin.TotalFlips{Count: *rc.Count}
	case coin.ConditionHeadsFlips:
		if rc.Count == nil {
			return missing(rc, "count")
		}
		return coin.HeadsFlips{Count: *rc.Count}
	case coin.ConditionTailsFlips:
		if rc.Count == nil {
			return missing(rc, "count")
		}
		return coin.TailsFlips{Count: *rc.Count}
	case coin.ConditionStreak:
		if rc.Count == nil {
			return missing(rc, "count")
		}
		side, ok := parseSide(rc.Side)
		if !ok {
			return coin.Invalid{Reason: fmt.Sprintf("streak side %q", rc.Side)}
		}
		return coin.Streak{Count: *rc.Count, Side: side}
	case coin.ConditionLandOnCoin:
		if rc.Count == nil {
			return missing(rc, "count")
		}
		if rc.Path == "" {
			return missing(rc, "path")
		}
		return coin.LandOnCoin{Path: rc.Path, Count: *rc.Count}
	case coin.ConditionLandOnMultipleCoins:
		if rc.Count == nil {
			return missing(rc, "count")
		}
		return coin.LandOnMultipleCoins{
			Paths:   append([]string(nil), rc.Paths...),
			Count:   *rc.Count,
			Dynamic: rc.Dynamic,
		}
	case coin.ConditionRandomChance:
		if rc.Chance == nil {
			return missing(rc, "chance")
		}
		return coin.RandomChance{
			Chance:             *rc.Chance,
			RequiresActiveCoin: rc.RequiresActiveCoin,
			ActiveCoinPath:     rc.ActiveCoinPath,
		}
	case coin.ConditionCharacteristics:
		if rc.Filter == nil {
			return missing(rc, "filter")
		}
		if rc.ConsecutiveCount == nil {
			return missing(rc, "consecutive_count")
		}
		f, err := convertFilter(*rc.Filter)
		if err != nil {
			return coin.Invalid{Reason: err.Error()}
		}
		req, ok := parseSideRequirement(rc.SideRequirement)
		if !ok {
			return coin.Invalid{Reason: fmt.Sprintf("side_requirement %q", rc.SideRequirement)}
		}
		return coin.LandOnCoinsWithCharacteristics{
			Filter:           f,
			Side:             req,
			ConsecutiveCount: *rc.ConsecutiveCount,
		}
	default:
		return coin.Invalid{Reason: fmt.Sprintf("unknown condition type %q", rc.Type)}
	}
}

func missing(rc RawCondition, field string) coin.Invalid {
	return coin.Invalid{Reason: fmt.Sprintf("%s: missing %s", rc.Type, field)}
}

func parseSide(s string) (coin.Side, bool) {
	switch coin.Side(strings.ToLower(s)) {
	case "":
		return "", true
	case coin.SideHeads:
		return coin.SideHeads, true
	case coin.SideTails:
		return coin.SideTails, true
	default:
		return "", false
	}
}

func parseSideRequirement(s string) (coin.SideRequirement, bool) {
	switch r := coin.SideRequirement(strings.ToLower(s)); r {
	case "":
		return coin.RequireAny, true
	case coin.RequireAny, coin.RequireHeads, coin.RequireTails, coin.RequireBoth:
		return r, true
	default:
		return "", false
	}
}

func convertFilter(rf RawFilter) (coin.Filter, error) {
	f := coin.Filter{Kind: coin.FilterKind(strings.ToLower(rf.Type))}
	switch f.Kind {
	case coin.FilterPaths:
		f.Paths = append([]string(nil), rf.Paths...)
	case coin.FilterConditionType:
		f.ConditionType = coin.ConditionKind(strings.ToLower(rf.ConditionType))
	case coin.FilterEffectType:
		f.EffectType = coin.EffectKind(strings.ToLower(rf.EffectType))
	case coin.FilterHasEffect, coin.FilterHasCondition:
	case coin.FilterPrerequisiteCount:
		if rf.Count == nil {
			return coin.Filter{}, fmt.Errorf("filter %s: missing count", rf.Type)
		}
		f.PrerequisiteCount = *rf.Count
		cmp := coin.Comparator(rf.Comparator)
		switch cmp {
		case "":
			cmp = coin.CompareGTE
		case coin.CompareGTE, coin.CompareGT, coin.CompareLTE, coin.CompareLT, coin.CompareEQ:
		default:
			return coin.Filter{}, fmt.Errorf("filter comparator %q", rf.Comparator)
		}
		f.Comparator = cmp
	default:
		return coin.Filter{}, fmt.Errorf("unknown filter type %q", rf.Type)
	}
	return f, nil
}

// convertEffect returns nil for effects it cannot understand; the coin then
// behaves as if it had none.
func convertEffect(re RawEffect) coin.Effect {
	switch coin.EffectKind(strings.ToLower(re.Type)) {
	case coin.EffectNone, "":
		return nil
	case coin.EffectAutoClick:
		if re.IntervalMs == nil || *re.IntervalMs <= 0 {
			return nil
		}
		return coin.AutoClick{IntervalMs: *re.IntervalMs}
	case coin.EffectWeighted:
		if re.Bias == nil {
			return nil
		}
		return coin.Weighted{Bias: *re.Bias}
	case coin.EffectShaved:
		if re.Bias == nil {
			return nil
		}
		return coin.Shaved{Bias: *re.Bias}
	case coin.EffectCombo:
		if re.Multiplier == nil {
			return nil
		}
		switch t := coin.ComboType(strings.ToLower(re.ComboType)); t {
		case coin.ComboAdditive, coin.ComboMultiplicative:
			return coin.Combo{Type: t, Multiplier: *re.Multiplier}
		default:
			return nil
		}
	case coin.EffectLuck:
		if re.Modifier == nil {
			return nil
		}
		t := coin.LuckType(strings.ToLower(re.LuckType))
		if t == "" {
			t = coin.LuckRandomChance
		}
		return coin.Luck{Modifier: *re.Modifier, Type: t}
	case coin.EffectAlwaysHeads:
		return coin.AlwaysHeads{}
	case coin.EffectAlwaysTails:
		return coin.AlwaysTails{}
	default:
		return nil
	}
}
