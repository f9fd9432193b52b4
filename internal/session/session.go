// Package session runs the flip loop for one player: face selection, outcome
// resolution, streak bookkeeping and progress tracking.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/effect"
	"github.com/xtding233/coinflip/internal/unlock"
)

var (
	ErrFlipInProgress = errors.New("a flip is already in progress")
	ErrUnknownCoin    = errors.New("unknown coin")
	ErrCoinLocked     = errors.New("coin is locked")
	ErrInvalidSide    = errors.New("side must be heads or tails")
)

// Face is what one side of the coin shows. A random face draws a new coin by
// rarity weight on every flip and falls back to Path when nothing qualifies.
type Face struct {
	Path   string `json:"path"`
	Random bool   `json:"random"`
}

// FlipResult describes one landed flip.
type FlipResult struct {
	Side             coin.Side `json:"side"`
	HeadsPath        string    `json:"headsPath"`
	TailsPath        string    `json:"tailsPath"`
	LandedPath       string    `json:"landedPath"`
	HeadsProbability float64   `json:"headsProbability"`
	Forced           bool      `json:"forced"`
	Streak           int       `json:"streak"`
	Unlocked         []string  `json:"unlocked"`
}

type Options struct {
	RNG       unlock.RandomSource
	Logger    *slog.Logger
	HeadsPath string
	TailsPath string
	// Seed makes MemoryFactory give each session its own seeded stream.
	Seed *uint64
}

// Session is safe for concurrent use, but only one flip runs at a time.
type Session struct {
	tracker *unlock.Tracker
	rng     unlock.RandomSource
	log     *slog.Logger
	busy    atomic.Bool

	defaults [2]string

	mu     sync.Mutex
	heads  Face
	tails  Face
	streak int
	last   coin.Side
}

func New(tr *unlock.Tracker, opt Options) *Session {
	if opt.RNG == nil {
		opt.RNG = unlock.DefaultRNG()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Session{
		tracker:  tr,
		rng:      opt.RNG,
		log:      opt.Logger,
		defaults: [2]string{opt.HeadsPath, opt.TailsPath},
		heads:    Face{Path: opt.HeadsPath},
		tails:    Face{Path: opt.TailsPath},
	}
}

func (s *Session) Tracker() *unlock.Tracker { return s.tracker }

// Flip resolves one flip and tracks it. A ctx that is done before the coin
// lands aborts the flip without touching progress. Once landed, the flip is
// recorded even if ctx is cancelled midway.
func (s *Session) Flip(ctx context.Context) (FlipResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return FlipResult{}, ErrFlipInProgress
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	headsFace, tailsFace, last, streak := s.heads, s.tails, s.last, s.streak
	s.mu.Unlock()

	cat := s.tracker.Catalog()
	headsPath := s.resolveFace(headsFace)
	tailsPath := s.resolveFace(tailsFace)
	he, te := cat.EffectOf(headsPath), cat.EffectOf(tailsPath)

	out := effect.Resolve(s.rng.Float64(), he, te, last)
	if err := ctx.Err(); err != nil {
		return FlipResult{}, fmt.Errorf("flip aborted: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	side, landed := coin.SideTails, tailsPath
	if out.LandedHeads {
		side, landed = coin.SideHeads, headsPath
	}
	if side == last {
		streak++
	} else {
		streak = 1
	}

	unlocked := s.tracker.TrackCoinLanding(ctx, landed, out.LandedHeads, streak, headsPath, tailsPath)
	if bonus := effect.ApplyComboStreakBonus(he, te, streak); bonus != streak {
		streak = bonus
		unlocked = append(unlocked, s.tracker.RecordStreak(ctx, streak, side)...)
	}
	won := s.tracker.TryRandomUnlocks(ctx, landed, effect.ChanceMultiplier(he, te), headsPath, tailsPath)
	unlocked = append(unlocked, won...)

	s.mu.Lock()
	s.streak, s.last = streak, side
	s.mu.Unlock()

	res := FlipResult{
		Side:             side,
		HeadsPath:        headsPath,
		TailsPath:        tailsPath,
		LandedPath:       landed,
		HeadsProbability: out.HeadsProbability,
		Forced:           out.Forced,
		Streak:           streak,
		Unlocked:         catalogOrder(cat, unlocked),
	}
	if len(res.Unlocked) > 0 {
		s.log.Info("coins unlocked", slog.Any("coins", res.Unlocked), slog.Int("total_flips", s.tracker.GetTotalFlips()))
	}
	return res, nil
}

func (s *Session) resolveFace(f Face) string {
	if !f.Random {
		return f.Path
	}
	if def, ok := unlock.PickWeighted(s.tracker.RandomCandidates(), s.rng); ok {
		return def.Path
	}
	return f.Path
}

// catalogOrder dedupes the unlocked coins and sorts them by declaration.
func catalogOrder(cat *coin.Catalog, defs []coin.Definition) []string {
	seen := make(map[string]bool, len(defs))
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		if seen[d.Path] {
			continue
		}
		seen[d.Path] = true
		out = append(out, d.Path)
	}
	sort.SliceStable(out, func(i, j int) bool { return cat.Index(out[i]) < cat.Index(out[j]) })
	return out
}

// SetFace puts an unlocked coin on side.
func (s *Session) SetFace(side coin.Side, path string) error {
	return s.setFace(side, Face{Path: path})
}

// SetFaceRandom makes side draw a random unlocked coin on every flip. path is
// shown when no coin qualifies and may be empty to keep the current one.
func (s *Session) SetFaceRandom(side coin.Side, path string) error {
	if path == "" {
		path = s.Faces()[side].Path
	}
	return s.setFace(side, Face{Path: path, Random: true})
}

func (s *Session) setFace(side coin.Side, f Face) error {
	if side != coin.SideHeads && side != coin.SideTails {
		return ErrInvalidSide
	}
	if !s.tracker.Catalog().Has(f.Path) {
		return fmt.Errorf("%w: %s", ErrUnknownCoin, f.Path)
	}
	if !s.tracker.IsUnlocked(f.Path) {
		return fmt.Errorf("%w: %s", ErrCoinLocked, f.Path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if side == coin.SideHeads {
		s.heads = f
	} else {
		s.tails = f
	}
	return nil
}

// Faces returns the current face configuration keyed by side.
func (s *Session) Faces() map[coin.Side]Face {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[coin.Side]Face{coin.SideHeads: s.heads, coin.SideTails: s.tails}
}

// Face returns what side currently shows.
func (s *Session) Face(side coin.Side) (Face, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch side {
	case coin.SideHeads:
		return s.heads, nil
	case coin.SideTails:
		return s.tails, nil
	}
	return Face{}, ErrInvalidSide
}

// Streak returns the running streak and the side it is on.
func (s *Session) Streak() (int, coin.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak, s.last
}

// AutoFlipInterval is the auto-flip period in milliseconds for the current
// explicit faces, or 0 if neither face auto-clicks.
func (s *Session) AutoFlipInterval() int {
	s.mu.Lock()
	h, t := s.heads.Path, s.tails.Path
	s.mu.Unlock()
	cat := s.tracker.Catalog()
	return effect.AutoClickInterval(cat.EffectOf(h), cat.EffectOf(t))
}

// Reset clears progress and the running streak and puts the default faces
// back, since the current ones may have been locked again.
func (s *Session) Reset(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrFlipInProgress
	}
	defer s.busy.Store(false)
	s.tracker.ResetProgress(ctx)
	s.mu.Lock()
	s.streak, s.last = 0, ""
	s.heads = Face{Path: s.defaults[0]}
	s.tails = Face{Path: s.defaults[1]}
	s.mu.Unlock()
	return nil
}
