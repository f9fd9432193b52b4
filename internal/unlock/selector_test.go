package unlock

import (
	"testing"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

func TestPickWeightedEmpty(t *testing.T) {
	if _, ok := PickWeighted(nil, NewSeededRNG(1)); ok {
		t.Fatal("nil candidates must return false")
	}
	zero := []coin.Definition{{Path: "a", Rarity: "Unknown"}}
	if _, ok := PickWeighted(zero, NewSeededRNG(1)); ok {
		t.Fatal("zero total weight must return false")
	}
}

func TestPickWeightedDeterministicWalk(t *testing.T) {
	cands := []coin.Definition{
		{Path: "common", Rarity: coin.RarityCommon},
		{Path: "rare", Rarity: coin.RarityRare},
		{Path: "legend", Rarity: coin.RarityLegendary},
	}
	// total = 1.35; cumulative = 1.0, 1.25, 1.35
	tests := []struct {
		draw float64
		want string
	}{
		{0, "common"},
		{0.74, "common"},
		{0.75, "rare"},
		{0.92, "rare"},
		{0.93, "legend"},
		{0.999999, "legend"},
	}
	for _, tc := range tests {
		got, ok := PickWeighted(cands, &FixedRNG{Draws: []float64{tc.draw}})
		if !ok || got.Path != tc.want {
			t.Errorf("draw %v: got %q ok=%v want %q", tc.draw, got.Path, ok, tc.want)
		}
	}
}

func TestPickWeightedDistribution(t *testing.T) {
	cands := []coin.Definition{
		{Path: "c", Rarity: coin.RarityCommon},
		{Path: "u", Rarity: coin.RarityUncommon},
		{Path: "r", Rarity: coin.RarityRare},
		{Path: "l", Rarity: coin.RarityLegendary},
	}
	const n = 100000
	rng := NewSeededRNG(7)
	count := map[string]int{}
	for i := 0; i < n; i++ {
		got, ok := PickWeighted(cands, rng)
		if !ok {
			t.Fatal("pick failed")
		}
		count[got.Path]++
	}
	total := 1.0 + 0.5 + 0.25 + 0.1
	for path, w := range map[string]float64{"c": 1.0, "u": 0.5, "r": 0.25, "l": 0.1} {
		want := w / total
		got := float64(count[path]) / n
		if diff := got - want; diff > 0.01 || diff < -0.01 {
			t.Errorf("%s: proportion %.4f want ~%.4f", path, got, want)
		}
	}
}

func TestRandomCandidates(t *testing.T) {
	cat := mustCatalog(t,
		coin.Definition{Path: "plain"},
		coin.Definition{Path: "effect", Effect: coin.Shaved{Bias: 0.1}},
		coin.Definition{Path: "earned", Condition: cond(coin.TotalFlips{Count: 1})},
		coin.Definition{Path: "locked", Condition: cond(coin.TotalFlips{Count: 100})},
	)
	st := progress.NewState()
	st.TotalFlips = 1
	got := paths(NewEvaluator(cat).RandomCandidates(st))
	if len(got) != 2 || got[0] != "effect" || got[1] != "earned" {
		t.Fatalf("got %v, want [effect earned]", got)
	}
}
