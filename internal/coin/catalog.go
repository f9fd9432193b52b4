package coin

import (
	"errors"
	"fmt"
)

var ErrDuplicatePath = errors.New("duplicate coin path")

// Definition is one catalog entry. Path is its identity.
type Definition struct {
	Path      string
	Rarity    Rarity
	Condition *Condition
	Effect    Effect
}

// Configured reports whether the coin declares a condition or an effect.
// Only configured coins take part in random face selection.
func (d Definition) Configured() bool {
	return d.Condition.Kind() != ConditionNone || d.Effect != nil
}

// Unlockable reports whether the coin has something to unlock.
func (d Definition) Unlockable() bool {
	return d.Condition.Kind() != ConditionNone
}

// Catalog is the immutable, ordered set of coin definitions.
type Catalog struct {
	coins  []Definition
	byPath map[string]int
}

// NewCatalog copies defs. Declaration order is preserved and drives the
// order in which unlocks are reported.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		coins:  make([]Definition, 0, len(defs)),
		byPath: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Path == "" {
			return nil, errors.New("coin path must not be empty")
		}
		if _, ok := c.byPath[d.Path]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, d.Path)
		}
		c.byPath[d.Path] = len(c.coins)
		c.coins = append(c.coins, d)
	}
	return c, nil
}

// Coins returns the definitions in declaration order. Callers must not modify
// the returned slice.
func (c *Catalog) Coins() []Definition {
	if c == nil {
		return nil
	}
	return c.coins
}

// Lookup finds a coin by path.
func (c *Catalog) Lookup(path string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	i, ok := c.byPath[path]
	if !ok {
		return Definition{}, false
	}
	return c.coins[i], true
}

// Index returns the declaration position of path, or -1.
func (c *Catalog) Index(path string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.byPath[path]; ok {
		return i
	}
	return -1
}

// Has reports whether path is in the catalog.
func (c *Catalog) Has(path string) bool {
	return c.Index(path) >= 0
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.coins)
}

// EffectOf returns the effect of the coin at path, or nil.
func (c *Catalog) EffectOf(path string) Effect {
	d, ok := c.Lookup(path)
	if !ok {
		return nil
	}
	return d.Effect
}
