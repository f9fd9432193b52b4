package coin

// FilterKind selects which piece of coin metadata a Filter inspects.
type FilterKind string

const (
	FilterPaths             FilterKind = "paths"
	FilterConditionType     FilterKind = "condition_type"
	FilterEffectType        FilterKind = "effect_type"
	FilterHasEffect         FilterKind = "has_effect"
	FilterHasCondition      FilterKind = "has_condition"
	FilterPrerequisiteCount FilterKind = "prerequisite_count"
)

// Comparator is used by prerequisite-count filters.
type Comparator string

const (
	CompareGTE Comparator = ">="
	CompareGT  Comparator = ">"
	CompareLTE Comparator = "<="
	CompareLT  Comparator = "<"
	CompareEQ  Comparator = "=="
)

// Compare reports whether a <op> b. Unknown operators never match.
func (c Comparator) Compare(a, b int) bool {
	switch c {
	case CompareGTE:
		return a >= b
	case CompareGT:
		return a > b
	case CompareLTE:
		return a <= b
	case CompareLT:
		return a < b
	case CompareEQ:
		return a == b
	default:
		return false
	}
}

// SideRequirement says which faces must match a characteristic filter.
type SideRequirement string

const (
	// RequireAny matches on the landed coin alone.
	RequireAny SideRequirement = "any"
	// RequireHeads and RequireTails also need the flip to land on that side.
	RequireHeads SideRequirement = "heads"
	RequireTails SideRequirement = "tails"
	// RequireBoth needs the landed coin and both configured faces to match.
	RequireBoth SideRequirement = "both"
)

// Filter is a predicate over another coin's declared metadata.
type Filter struct {
	Kind              FilterKind
	Paths             []string
	ConditionType     ConditionKind
	EffectType        EffectKind
	PrerequisiteCount int
	Comparator        Comparator
}

// Matches applies f to def.
func (f Filter) Matches(def Definition) bool {
	switch f.Kind {
	case FilterPaths:
		for _, p := range f.Paths {
			if p == def.Path {
				return true
			}
		}
		return false
	case FilterConditionType:
		return def.Condition.Kind() == f.ConditionType
	case FilterEffectType:
		return KindOf(def.Effect) == f.EffectType
	case FilterHasEffect:
		return def.Effect != nil
	case FilterHasCondition:
		return def.Condition.Kind() != ConditionNone
	case FilterPrerequisiteCount:
		n := 0
		if def.Condition != nil {
			n = len(def.Condition.Prerequisites)
		}
		cmp := f.Comparator
		if cmp == "" {
			cmp = CompareGTE
		}
		return cmp.Compare(n, f.PrerequisiteCount)
	default:
		return false
	}
}
