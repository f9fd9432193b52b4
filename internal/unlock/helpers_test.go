package unlock

import (
	"testing"

	"github.com/xtding233/coinflip/internal/coin"
)

func mustCatalog(t *testing.T, defs ...coin.Definition) *coin.Catalog {
	t.Helper()
	cat, err := coin.NewCatalog(defs)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func cond(r coin.Rule, prereqs ...coin.Rule) *coin.Condition {
	c := &coin.Condition{Rule: r}
	for _, p := range prereqs {
		c.Prerequisites = append(c.Prerequisites, coin.Condition{Rule: p})
	}
	return c
}

func paths(defs []coin.Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Path)
	}
	return out
}
