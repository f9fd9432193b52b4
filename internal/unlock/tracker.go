package unlock

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

// Tracker owns one player's progress state. It applies flips, runs chance
// rolls and persists after every mutation. Persistence failures are logged
// and play continues on the in-memory state.
type Tracker struct {
	mu     sync.Mutex
	st     *progress.State
	eval   *Evaluator
	roller *Roller
	store  progress.Store
	log    *slog.Logger
	now    func() time.Time

	// detached is set while the saved state has never been read. Saves are
	// held back until a Load succeeds so the durable copy is not clobbered.
	detached bool
}

// Options tune a Tracker. Zero values select defaults.
type Options struct {
	RNG    RandomSource
	Now    func() time.Time
	Logger *slog.Logger
}

// NewTracker loads the saved state from store. A load failure starts from
// the zero state and leaves the tracker detached: later saves first retry
// the load and merge the offline progress into what was stored.
func NewTracker(ctx context.Context, cat *coin.Catalog, store progress.Store, opt Options) *Tracker {
	if store == nil {
		store = progress.NewMemoryStore()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	eval := NewEvaluator(cat)
	t := &Tracker{
		eval:   eval,
		roller: NewRoller(eval, opt.RNG, opt.Now),
		store:  store,
		log:    opt.Logger,
		now:    opt.Now,
	}
	st, err := store.Load(ctx)
	if err != nil {
		t.log.Warn("progress load failed, starting fresh", slog.Any("error", err))
		st = progress.NewState()
		t.detached = true
	}
	t.st = st
	return t
}

func (t *Tracker) Evaluator() *Evaluator { return t.eval }

func (t *Tracker) Catalog() *coin.Catalog { return t.eval.cat }

// TrackCoinLanding records one landed flip and returns the coins it
// unlocked, in catalog order.
func (t *Tracker) TrackCoinLanding(ctx context.Context, landedPath string, isHeads bool, currentStreak int, headsPath, tailsPath string) []coin.Definition {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.eval.Snapshot(t.st)

	t.st.TotalFlips++
	side := coin.SideTails
	if isHeads {
		t.st.HeadsFlips++
		side = coin.SideHeads
	} else {
		t.st.TailsFlips++
	}
	t.st.RecordStreak(currentStreak, string(side))
	if landedPath != "" {
		t.st.CoinLandCounts[landedPath]++
	}
	t.eval.UpdateCharacteristicCounts(t.st, Landing{
		Path:      landedPath,
		IsHeads:   isHeads,
		HeadsPath: headsPath,
		TailsPath: tailsPath,
	})

	unlocked := t.diffLocked(before)
	t.persistLocked(ctx)
	return unlocked
}

// RecordStreak re-checks the longest-streak counters, e.g. after a combo
// bonus changed the running streak. It returns coins that unlocked.
func (t *Tracker) RecordStreak(ctx context.Context, streak int, side coin.Side) []coin.Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	before := t.eval.Snapshot(t.st)
	t.st.RecordStreak(streak, string(side))
	unlocked := t.diffLocked(before)
	if len(unlocked) > 0 {
		t.persistLocked(ctx)
	}
	return unlocked
}

// TryRandomUnlocks runs the chance rolls for this flip.
func (t *Tracker) TryRandomUnlocks(ctx context.Context, landedPath string, chanceMultiplier float64, headsPath, tailsPath string) []coin.Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	won := t.roller.TryRandomUnlocks(t.st, chanceMultiplier, headsPath, tailsPath)
	if len(won) == 0 {
		return nil
	}
	for _, def := range won {
		t.log.Info("random unlock",
			slog.String("coin", def.Path),
			slog.String("landed", landedPath))
	}
	t.persistLocked(ctx)
	return won
}

// diffLocked stamps and returns every coin that turned unlocked since before.
func (t *Tracker) diffLocked(before []bool) []coin.Definition {
	var out []coin.Definition
	now := t.now().UTC()
	for i, def := range t.eval.cat.Coins() {
		if before[i] || !t.eval.IsUnlocked(def, t.st) {
			continue
		}
		if _, ok := t.st.CoinUnlockTimestamps[def.Path]; !ok && def.Unlockable() {
			t.st.CoinUnlockTimestamps[def.Path] = now
		}
		out = append(out, def)
	}
	return out
}

func (t *Tracker) persistLocked(ctx context.Context) {
	if t.detached && !t.reattachLocked(ctx) {
		return
	}
	if err := t.store.Save(ctx, t.st); err != nil {
		t.log.Warn("progress save failed, keeping in-memory state", slog.Any("error", err))
	}
}

// reattachLocked retries the load that failed in NewTracker. On success the
// offline progress is merged into the stored state.
func (t *Tracker) reattachLocked(ctx context.Context) bool {
	durable, err := t.store.Load(ctx)
	if err != nil {
		t.log.Warn("progress store unreachable, save skipped", slog.Any("error", err))
		return false
	}
	t.st = progress.Merge(durable, t.st)
	t.diffLocked(make([]bool, len(t.eval.cat.Coins())))
	t.detached = false
	t.log.Info("progress store reachable again, offline progress merged",
		slog.Int("total_flips", t.st.TotalFlips))
	return true
}

// IsUnlocked reports the status of the coin at path. Unknown paths are locked.
func (t *Tracker) IsUnlocked(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eval.IsPathUnlocked(path, t.st)
}

// Unlocked lists the unlocked coins in catalog order.
func (t *Tracker) Unlocked() []coin.Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eval.Unlocked(t.st)
}

// RandomCandidates lists the coins eligible for a random face.
func (t *Tracker) RandomCandidates() []coin.Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eval.RandomCandidates(t.st)
}

func (t *Tracker) GetTotalFlips() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.TotalFlips
}

func (t *Tracker) GetHeadsFlips() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.HeadsFlips
}

func (t *Tracker) GetTailsFlips() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.TailsFlips
}

func (t *Tracker) GetLongestStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.LongestStreak
}

func (t *Tracker) GetCoinLandCount(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.CoinLandCounts[path]
}

// State returns a copy of the current progress.
func (t *Tracker) State() *progress.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.Clone()
}

// MarkNotificationShown records that the unlock toast for path was displayed.
func (t *Tracker) MarkNotificationShown(ctx context.Context, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.NotificationShownFor.Has(path) {
		return
	}
	t.st.NotificationShownFor.Add(path)
	t.persistLocked(ctx)
}

// PendingNotifications lists unlocked, unlockable coins whose notification
// has not been shown yet, oldest unlock first.
func (t *Tracker) PendingNotifications() []coin.Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []coin.Definition
	for _, def := range t.eval.cat.Coins() {
		if !def.Unlockable() || t.st.NotificationShownFor.Has(def.Path) {
			continue
		}
		if t.eval.IsUnlocked(def, t.st) {
			out = append(out, def)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return t.st.CoinUnlockTimestamps[out[i].Path].Before(t.st.CoinUnlockTimestamps[out[j].Path])
	})
	return out
}

// ResetProgress zeroes every counter and persists the empty state.
func (t *Tracker) ResetProgress(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st = progress.NewState()
	t.detached = false
	t.persistLocked(ctx)
	t.log.Info("progress reset")
}
