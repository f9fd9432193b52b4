package catalog

// RawCatalog mirrors the YAML catalog file.
type RawCatalog struct {
	Version string    `yaml:"version"`
	Heads   string    `yaml:"heads,omitempty"` // default heads face
	Tails   string    `yaml:"tails,omitempty"` // default tails face
	Coins   []RawCoin `yaml:"coins"`
	Notes   string    `yaml:"notes,omitempty"`
}

type RawCoin struct {
	Path      string        `yaml:"path"`
	Rarity    string        `yaml:"rarity,omitempty"`
	Condition *RawCondition `yaml:"condition,omitempty"`
	Effect    *RawEffect    `yaml:"effect,omitempty"`
}

// RawCondition is a flat union of every rule's fields, selected by Type.
type RawCondition struct {
	Type   string `yaml:"type"`
	Rarity string `yaml:"rarity,omitempty"`

	Count *int   `yaml:"count,omitempty"`
	Side  string `yaml:"side,omitempty"` // streak: "heads" | "tails" | ""

	Path    string   `yaml:"path,omitempty"`
	Paths   []string `yaml:"paths,omitempty"`
	Dynamic bool     `yaml:"dynamic,omitempty"`

	Chance             *float64 `yaml:"chance,omitempty"`
	RequiresActiveCoin bool     `yaml:"requires_active_coin,omitempty"`
	ActiveCoinPath     string   `yaml:"active_coin_path,omitempty"`

	Filter           *RawFilter `yaml:"filter,omitempty"`
	SideRequirement  string     `yaml:"side_requirement,omitempty"`
	ConsecutiveCount *int       `yaml:"consecutive_count,omitempty"`

	Prerequisites []RawCondition `yaml:"prerequisites,omitempty"`
}

type RawFilter struct {
	Type          string   `yaml:"type"`
	Paths         []string `yaml:"paths,omitempty"`
	ConditionType string   `yaml:"condition_type,omitempty"`
	EffectType    string   `yaml:"effect_type,omitempty"`
	Count         *int     `yaml:"count,omitempty"`
	Comparator    string   `yaml:"comparator,omitempty"`
}

type RawEffect struct {
	Type       string   `yaml:"type"`
	IntervalMs *int     `yaml:"interval_ms,omitempty"`
	Bias       *float64 `yaml:"bias,omitempty"`
	ComboType  string   `yaml:"combo_type,omitempty"`
	Multiplier *float64 `yaml:"multiplier,omitempty"`
	Modifier   *float64 `yaml:"modifier,omitempty"`
	LuckType   string   `yaml:"luck_type,omitempty"`
}
