package coin

import "strings"

// Rarity is the collection tier of a coin.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// AllRarities returns all rarities from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityLegendary}
}

// Weight is the sampling weight used when a face shows a random coin.
// Unknown tiers weigh nothing.
func (r Rarity) Weight() float64 {
	switch r {
	case RarityCommon:
		return 1.0
	case RarityUncommon:
		return 0.5
	case RarityRare:
		return 0.25
	case RarityLegendary:
		return 0.1
	default:
		return 0
	}
}

// ParseRarity accepts any casing; empty input means Common.
func ParseRarity(s string) (Rarity, bool) {
	if s == "" {
		return RarityCommon, true
	}
	for _, r := range AllRarities() {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}
