package unlock

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

var ErrNotRandomChance = errors.New("simulation needs a random_chance coin")

// SimParams describes one chance-unlock simulation.
type SimParams struct {
	Coin             coin.Definition
	HeadsPath        string
	TailsPath        string
	ChanceMultiplier float64
	// MaxFlips caps a single trial; <= 0 means 100000.
	MaxFlips int
}

// Stats summarizes flips-until-unlock samples.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// PerFlipRate is unlocks per flip across all trials.
	PerFlipRate float64
	// Capped counts trials that hit MaxFlips without unlocking.
	Capped  int
	Samples []int `json:"-"`
}

// ExpectedPerFlipChance is the closed-form unlock probability of one flip for
// the given faces.
func ExpectedPerFlipChance(rc coin.RandomChance, multiplier float64, headsPath, tailsPath string) float64 {
	p := EffectiveChance(rc.Chance, multiplier)
	if !rc.RequiresActiveCoin {
		return p
	}
	onHeads := rc.ActiveCoinPath != "" && rc.ActiveCoinPath == headsPath
	onTails := rc.ActiveCoinPath != "" && rc.ActiveCoinPath == tailsPath
	switch {
	case onHeads && onTails:
		return 1 - (1-p)*(1-p)
	case onHeads || onTails:
		return p
	default:
		return 0
	}
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// RunMonteCarlo flips until the coin unlocks, trials times, on fresh state.
// Prerequisites are ignored so the roll itself is measured.
func RunMonteCarlo(p SimParams, trials int, rng RandomSource) (Stats, error) {
	if p.Coin.Condition == nil {
		return Stats{}, ErrNotRandomChance
	}
	rc, ok := p.Coin.Condition.Rule.(coin.RandomChance)
	if !ok {
		return Stats{}, ErrNotRandomChance
	}
	if trials <= 0 {
		return Stats{}, nil
	}
	if p.MaxFlips <= 0 {
		p.MaxFlips = 100000
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	def := coin.Definition{
		Path:      p.Coin.Path,
		Rarity:    p.Coin.Rarity,
		Condition: &coin.Condition{Rule: rc, Rarity: p.Coin.Condition.Rarity},
	}
	cat, err := coin.NewCatalog([]coin.Definition{def})
	if err != nil {
		return Stats{}, err
	}
	epoch := time.Unix(0, 0)
	roller := NewRoller(NewEvaluator(cat), rng, func() time.Time { return epoch })

	samples := make([]int, trials)
	var flips, unlocks, capped int
	for i := 0; i < trials; i++ {
		st := progress.NewState()
		n := 0
		for n < p.MaxFlips {
			n++
			if len(roller.TryRandomUnlocks(st, p.ChanceMultiplier, p.HeadsPath, p.TailsPath)) > 0 {
				unlocks++
				break
			}
		}
		if !st.RandomUnlockedCoins.Has(def.Path) {
			capped++
		}
		flips += n
		samples[i] = n
	}
	stats := calcStats(samples)
	stats.Capped = capped
	if flips > 0 {
		stats.PerFlipRate = float64(unlocks) / float64(flips)
	}
	return stats, nil
}
