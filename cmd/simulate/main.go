// Command simulate estimates how many flips a random_chance coin takes to
// unlock for a given pair of faces.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/xtding233/coinflip/internal/catalog"
	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/effect"
	"github.com/xtding233/coinflip/internal/logging"
	"github.com/xtding233/coinflip/internal/unlock"
)

func main() {
	var (
		catalogPath = flag.String("catalog", "configs/catalog.yaml", "catalog file")
		target      = flag.String("coin", "", "random_chance coin to simulate")
		heads       = flag.String("heads", "", "heads face (default: catalog default)")
		tails       = flag.String("tails", "", "tails face (default: catalog default)")
		trials      = flag.Int("trials", 10000, "number of unlock runs")
		maxFlips    = flag.Int("max-flips", 100000, "flip cap per run")
		seed        = flag.Uint64("seed", 0, "RNG seed; 0 uses the crypto RNG")
	)
	flag.Parse()
	log := logging.Setup(os.Stderr, slog.LevelWarn)

	if err := run(log, *catalogPath, *target, *heads, *tails, *trials, *maxFlips, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, catalogPath, target, heads, tails string, trials, maxFlips int, seed uint64) error {
	cat, err := catalog.Load(catalogPath, log)
	if err != nil {
		return err
	}
	def, ok := cat.Lookup(target)
	if !ok {
		return fmt.Errorf("unknown coin %q", target)
	}
	if heads == "" {
		heads = cat.HeadsPath
	}
	if tails == "" {
		tails = cat.TailsPath
	}
	if def.Condition == nil {
		return unlock.ErrNotRandomChance
	}
	rc, ok := def.Condition.Rule.(coin.RandomChance)
	if !ok {
		return unlock.ErrNotRandomChance
	}

	var rng unlock.RandomSource
	if seed != 0 {
		rng = unlock.NewSeededRNG(seed)
	}
	mult := effect.ChanceMultiplier(cat.EffectOf(heads), cat.EffectOf(tails))
	stats, err := unlock.RunMonteCarlo(unlock.SimParams{
		Coin:             def,
		HeadsPath:        heads,
		TailsPath:        tails,
		ChanceMultiplier: mult,
		MaxFlips:         maxFlips,
	}, trials, rng)
	if err != nil {
		return err
	}

	fmt.Printf("coin=%s heads=%s tails=%s multiplier=%.3f\n", def.Path, heads, tails, mult)
	fmt.Printf("expected per-flip chance: %.6f\n", unlock.ExpectedPerFlipChance(rc, mult, heads, tails))
	fmt.Printf("observed per-flip rate:   %.6f\n", stats.PerFlipRate)
	fmt.Printf("flips to unlock: mean=%.1f sd=%.1f p50=%.0f p90=%.0f p99=%.0f\n",
		stats.Mean, stats.StdDev, stats.P50, stats.P90, stats.P99)
	if stats.Capped > 0 {
		fmt.Printf("%d/%d runs hit the %d flip cap\n", stats.Capped, trials, maxFlips)
	}
	return nil
}
