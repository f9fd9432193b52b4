package coin

// ConditionKind names an unlock rule variant. It is also what characteristic
// filters compare against.
type ConditionKind string

const (
	ConditionNone                ConditionKind = "none"
	ConditionTotalFlips          ConditionKind = "total_flips"
	ConditionHeadsFlips          ConditionKind = "heads_flips"
	ConditionTailsFlips          ConditionKind = "tails_flips"
	ConditionStreak              ConditionKind = "streak"
	ConditionLandOnCoin          ConditionKind = "land_on_coin"
	ConditionLandOnMultipleCoins ConditionKind = "land_on_multiple_coins"
	ConditionRandomChance        ConditionKind = "random_chance"
	ConditionCharacteristics     ConditionKind = "land_on_coins_with_characteristics"
	ConditionInvalid             ConditionKind = "invalid"
)

// Side is a coin face.
type Side string

const (
	SideHeads Side = "heads"
	SideTails Side = "tails"
)

// Opposite returns the other face. The empty side has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case SideHeads:
		return SideTails
	case SideTails:
		return SideHeads
	default:
		return ""
	}
}

// Condition gates a coin. Rule decides the unlock; Prerequisites must all hold
// before Rule is considered at all. Prerequisites of prerequisites are not
// evaluated.
type Condition struct {
	Rule          Rule
	Prerequisites []Condition
	Rarity        Rarity
}

// Kind reports the variant of c, treating a nil condition or rule as None.
func (c *Condition) Kind() ConditionKind {
	if c == nil || c.Rule == nil {
		return ConditionNone
	}
	return c.Rule.Kind()
}

// Rule is a sealed sum type; the variants below are the only implementations.
type Rule interface {
	Kind() ConditionKind
	isRule()
}

type NoRule struct{}

type TotalFlips struct{ Count int }

type HeadsFlips struct{ Count int }

type TailsFlips struct{ Count int }

// Streak compares against the per-side longest streak when Side is set,
// otherwise the global one.
type Streak struct {
	Count int
	Side  Side
}

type LandOnCoin struct {
	Path  string
	Count int
}

// LandOnMultipleCoins requires every path to reach Count landings. With
// Dynamic set, Paths is ignored and replaced by every other unlockable coin.
type LandOnMultipleCoins struct {
	Paths   []string
	Count   int
	Dynamic bool
}

type RandomChance struct {
	Chance             float64
	RequiresActiveCoin bool
	ActiveCoinPath     string
}

type LandOnCoinsWithCharacteristics struct {
	Filter           Filter
	Side             SideRequirement
	ConsecutiveCount int
}

// Invalid stands in for authored data the loader could not understand.
// It never holds.
type Invalid struct{ Reason string }

func (NoRule) Kind() ConditionKind                         { return ConditionNone }
func (TotalFlips) Kind() ConditionKind                     { return ConditionTotalFlips }
func (HeadsFlips) Kind() ConditionKind                     { return ConditionHeadsFlips }
func (TailsFlips) Kind() ConditionKind                     { return ConditionTailsFlips }
func (Streak) Kind() ConditionKind                         { return ConditionStreak }
func (LandOnCoin) Kind() ConditionKind                     { return ConditionLandOnCoin }
func (LandOnMultipleCoins) Kind() ConditionKind            { return ConditionLandOnMultipleCoins }
func (RandomChance) Kind() ConditionKind                   { return ConditionRandomChance }
func (LandOnCoinsWithCharacteristics) Kind() ConditionKind { return ConditionCharacteristics }
func (Invalid) Kind() ConditionKind                        { return ConditionInvalid }

func (NoRule) isRule()                         {}
func (TotalFlips) isRule()                     {}
func (HeadsFlips) isRule()                     {}
func (TailsFlips) isRule()                     {}
func (Streak) isRule()                         {}
func (LandOnCoin) isRule()                     {}
func (LandOnMultipleCoins) isRule()            {}
func (RandomChance) isRule()                   {}
func (LandOnCoinsWithCharacteristics) isRule() {}
func (Invalid) isRule()                        {}
