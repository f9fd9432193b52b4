package coin

// EffectKind names a coin effect variant.
type EffectKind string

const (
	EffectNone        EffectKind = "none"
	EffectAutoClick   EffectKind = "auto_click"
	EffectWeighted    EffectKind = "weighted"
	EffectShaved      EffectKind = "shaved"
	EffectCombo       EffectKind = "combo"
	EffectLuck        EffectKind = "luck"
	EffectAlwaysHeads EffectKind = "always_heads"
	EffectAlwaysTails EffectKind = "always_tails"
)

// ComboType controls how a combo amplifies the opposite face.
type ComboType string

const (
	ComboAdditive       ComboType = "additive"
	ComboMultiplicative ComboType = "multiplicative"
)

// LuckType names what a Luck effect modifies.
type LuckType string

const (
	// LuckRandomChance scales the chance of RandomChance unlocks.
	LuckRandomChance LuckType = "random_chance"
)

// Effect is a sealed sum type. A nil Effect means the coin has none.
type Effect interface {
	Kind() EffectKind
	isEffect()
}

type AutoClick struct{ IntervalMs int }

// Weighted makes its face heavier, so it tends to land face down.
type Weighted struct{ Bias float64 }

// Shaved makes its face lighter, so it tends to land face up.
type Shaved struct{ Bias float64 }

type Combo struct {
	Type       ComboType
	Multiplier float64
}

type Luck struct {
	Modifier float64
	Type     LuckType
}

type AlwaysHeads struct{}

type AlwaysTails struct{}

func (AutoClick) Kind() EffectKind   { return EffectAutoClick }
func (Weighted) Kind() EffectKind    { return EffectWeighted }
func (Shaved) Kind() EffectKind      { return EffectShaved }
func (Combo) Kind() EffectKind       { return EffectCombo }
func (Luck) Kind() EffectKind        { return EffectLuck }
func (AlwaysHeads) Kind() EffectKind { return EffectAlwaysHeads }
func (AlwaysTails) Kind() EffectKind { return EffectAlwaysTails }

func (AutoClick) isEffect()   {}
func (Weighted) isEffect()    {}
func (Shaved) isEffect()      {}
func (Combo) isEffect()       {}
func (Luck) isEffect()        {}
func (AlwaysHeads) isEffect() {}
func (AlwaysTails) isEffect() {}

// KindOf returns EffectNone for a nil effect.
func KindOf(e Effect) EffectKind {
	if e == nil {
		return EffectNone
	}
	return e.Kind()
}
