package unlock

import (
	"context"
	"errors"
	"testing"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
)

type failingStore struct {
	loads int
	saves int
}

func (f *failingStore) Load(context.Context) (*progress.State, error) {
	f.loads++
	return nil, errors.New("disk unavailable")
}

func (f *failingStore) Save(context.Context, *progress.State) error {
	f.saves++
	return errors.New("disk unavailable")
}

func trackerCatalog(t *testing.T) *coin.Catalog {
	return mustCatalog(t,
		coin.Definition{Path: "gold"},
		coin.Definition{Path: "silver", Effect: coin.Weighted{Bias: 0.1}},
		coin.Definition{Path: "two", Condition: cond(coin.TotalFlips{Count: 2})},
		coin.Definition{Path: "heads3", Condition: cond(coin.HeadsFlips{Count: 3})},
		coin.Definition{Path: "streak3", Condition: cond(coin.Streak{Count: 3, Side: coin.SideHeads})},
		coin.Definition{Path: "gold2", Condition: cond(coin.LandOnCoin{Path: "gold", Count: 2})},
		coin.Definition{Path: "heavy2", Condition: cond(coin.LandOnCoinsWithCharacteristics{
			Filter: coin.Filter{Kind: coin.FilterEffectType, EffectType: coin.EffectWeighted}, ConsecutiveCount: 2,
		})},
	)
}

func TestTrackCoinLandingCounters(t *testing.T) {
	ctx := t.Context()
	tr := NewTracker(ctx, trackerCatalog(t), progress.NewMemoryStore(), Options{Now: clock})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "silver")
	tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "silver")
	tr.TrackCoinLanding(ctx, "silver", false, 1, "gold", "silver")

	if tr.GetTotalFlips() != 3 || tr.GetHeadsFlips() != 2 || tr.GetTailsFlips() != 1 {
		t.Fatalf("flips total=%d heads=%d tails=%d", tr.GetTotalFlips(), tr.GetHeadsFlips(), tr.GetTailsFlips())
	}
	if tr.GetLongestStreak() != 2 || tr.GetCoinLandCount("gold") != 2 || tr.GetCoinLandCount("silver") != 1 {
		t.Fatalf("streak=%d gold=%d silver=%d", tr.GetLongestStreak(), tr.GetCoinLandCount("gold"), tr.GetCoinLandCount("silver"))
	}
	st := tr.State()
	if st.LongestHeadsStreak != 2 || st.LongestTailsStreak != 1 {
		t.Fatalf("per-side streaks %d/%d", st.LongestHeadsStreak, st.LongestTailsStreak)
	}
}

func TestTrackCoinLandingReportsInCatalogOrder(t *testing.T) {
	ctx := t.Context()
	tr := NewTracker(ctx, trackerCatalog(t), progress.NewMemoryStore(), Options{Now: clock})
	if got := tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "silver"); len(got) != 0 {
		t.Fatalf("first flip unlocked %v", paths(got))
	}
	got := paths(tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "silver"))
	if len(got) != 2 || got[0] != "two" || got[1] != "gold2" {
		t.Fatalf("got %v, want [two gold2]", got)
	}
	got = paths(tr.TrackCoinLanding(ctx, "gold", true, 3, "gold", "silver"))
	if len(got) != 2 || got[0] != "heads3" || got[1] != "streak3" {
		t.Fatalf("got %v, want [heads3 streak3]", got)
	}
	st := tr.State()
	if !st.CoinUnlockTimestamps["two"].Equal(fixedNow) {
		t.Fatal("unlock should be stamped")
	}
}

func TestMonotonicityAcrossFlips(t *testing.T) {
	ctx := t.Context()
	cat := trackerCatalog(t)
	tr := NewTracker(ctx, cat, progress.NewMemoryStore(), Options{Now: clock})
	rng := NewSeededRNG(99)
	everUnlocked := map[string]bool{}
	seen := map[string]int{}
	streak, last := 0, false
	for i := 0; i < 500; i++ {
		heads := rng.Float64() < 0.5
		landed := "gold"
		if rng.Float64() < 0.5 {
			landed = "silver"
		}
		if heads == last {
			streak++
		} else {
			streak = 1
		}
		last = heads
		for _, def := range tr.TrackCoinLanding(ctx, landed, heads, streak, "gold", "silver") {
			seen[def.Path]++
		}
		for _, def := range cat.Coins() {
			now := tr.IsUnlocked(def.Path)
			if everUnlocked[def.Path] && !now {
				t.Fatalf("flip %d: %s reverted to locked", i, def.Path)
			}
			everUnlocked[def.Path] = everUnlocked[def.Path] || now
		}
	}
	for path, n := range seen {
		if n != 1 {
			t.Fatalf("%s reported %d times", path, n)
		}
	}
}

func TestPersistenceFailureFallsBackToMemory(t *testing.T) {
	ctx := t.Context()
	store := &failingStore{}
	tr := NewTracker(ctx, trackerCatalog(t), store, Options{})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")
	tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "gold")
	if tr.GetTotalFlips() != 2 {
		t.Fatalf("in-memory state lost; total=%d", tr.GetTotalFlips())
	}
	if store.saves != 0 {
		t.Fatalf("saved over unread progress %d times", store.saves)
	}
	if store.loads != 3 {
		t.Fatalf("expected a load retry per flip; got %d loads", store.loads)
	}
}

// flakyStore fails its first failLoads loads, then behaves like a MemoryStore.
type flakyStore struct {
	*progress.MemoryStore
	failLoads int
}

func (f *flakyStore) Load(ctx context.Context) (*progress.State, error) {
	if f.failLoads > 0 {
		f.failLoads--
		return nil, errors.New("connection refused")
	}
	return f.MemoryStore.Load(ctx)
}

func TestTrackerMergesOfflineProgressAfterLoadFailure(t *testing.T) {
	ctx := t.Context()
	saved := progress.NewState()
	saved.TotalFlips = 500
	saved.HeadsFlips = 250
	saved.TailsFlips = 250
	saved.CoinLandCounts["gold"] = 1
	mem := progress.NewMemoryStore()
	if err := mem.Save(ctx, saved); err != nil {
		t.Fatal(err)
	}
	store := &flakyStore{MemoryStore: mem, failLoads: 1}
	tr := NewTracker(ctx, trackerCatalog(t), store, Options{Now: clock})
	if tr.GetTotalFlips() != 0 {
		t.Fatalf("expected a fresh state while detached; total=%d", tr.GetTotalFlips())
	}

	unlocked := tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")
	if len(unlocked) != 0 {
		t.Fatalf("offline flip alone unlocked %v", paths(unlocked))
	}
	if tr.GetTotalFlips() != 501 || tr.GetCoinLandCount("gold") != 2 {
		t.Fatalf("merged total=%d gold=%d", tr.GetTotalFlips(), tr.GetCoinLandCount("gold"))
	}
	if !tr.IsUnlocked("gold2") {
		t.Fatal("merged land count should unlock gold2")
	}
	durable, err := mem.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if durable.TotalFlips != 501 || durable.HeadsFlips != 251 {
		t.Fatalf("durable total=%d heads=%d", durable.TotalFlips, durable.HeadsFlips)
	}
	if _, ok := durable.CoinUnlockTimestamps["gold2"]; !ok {
		t.Fatal("coin unlocked by the merge was not stamped")
	}

	tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "gold")
	durable, _ = mem.Load(ctx)
	if durable.TotalFlips != 502 {
		t.Fatalf("after reattach total=%d", durable.TotalFlips)
	}
}

func TestTrackerReloadsFromStore(t *testing.T) {
	ctx := t.Context()
	store := progress.NewMemoryStore()
	cat := trackerCatalog(t)
	tr := NewTracker(ctx, cat, store, Options{})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")
	tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "gold")
	again := NewTracker(ctx, cat, store, Options{})
	if again.GetTotalFlips() != 2 || !again.IsUnlocked("gold2") {
		t.Fatalf("reloaded total=%d gold2=%v", again.GetTotalFlips(), again.IsUnlocked("gold2"))
	}
}

func TestResetProgress(t *testing.T) {
	ctx := t.Context()
	store := progress.NewMemoryStore()
	tr := NewTracker(ctx, trackerCatalog(t), store, Options{})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")
	tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "gold")
	tr.ResetProgress(ctx)
	if tr.GetTotalFlips() != 0 || tr.IsUnlocked("two") {
		t.Fatal("reset must zero counters and relock coins")
	}
	saved, err := store.Load(ctx)
	if err != nil || saved.TotalFlips != 0 || len(saved.CoinUnlockTimestamps) != 0 {
		t.Fatalf("zeroed state not persisted: %+v err=%v", saved, err)
	}
}

func TestNotifications(t *testing.T) {
	ctx := t.Context()
	tr := NewTracker(ctx, trackerCatalog(t), progress.NewMemoryStore(), Options{Now: clock})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")
	tr.TrackCoinLanding(ctx, "gold", true, 2, "gold", "gold")
	pending := paths(tr.PendingNotifications())
	if len(pending) != 2 {
		t.Fatalf("pending = %v", pending)
	}
	tr.MarkNotificationShown(ctx, "two")
	pending = paths(tr.PendingNotifications())
	if len(pending) != 1 || pending[0] != "gold2" {
		t.Fatalf("pending = %v, want [gold2]", pending)
	}
}

func TestRecordStreakAfterBonus(t *testing.T) {
	ctx := t.Context()
	tr := NewTracker(ctx, trackerCatalog(t), progress.NewMemoryStore(), Options{})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")
	got := paths(tr.RecordStreak(ctx, 101, coin.SideHeads))
	if len(got) != 1 || got[0] != "streak3" {
		t.Fatalf("got %v, want [streak3]", got)
	}
	if tr.GetLongestStreak() != 101 {
		t.Fatalf("longest = %d", tr.GetLongestStreak())
	}
}

func TestTrackerTryRandomUnlocks(t *testing.T) {
	ctx := t.Context()
	cat := mustCatalog(t,
		coin.Definition{Path: "lucky", Condition: cond(coin.RandomChance{Chance: 0.5})},
	)
	tr := NewTracker(ctx, cat, progress.NewMemoryStore(), Options{RNG: &FixedRNG{Draws: []float64{0.4}}})
	got := tr.TryRandomUnlocks(ctx, "x", 1, "", "")
	if len(got) != 1 || !tr.IsUnlocked("lucky") {
		t.Fatalf("draw 0.4 < 0.5 must unlock; got %v", paths(got))
	}
	if tr.TrackCoinLanding(ctx, "x", true, 1, "", "") != nil {
		t.Fatal("random unlock must not be reported again by landing diff")
	}
}

func TestGetProgressDescription(t *testing.T) {
	ctx := t.Context()
	cat := mustCatalog(t,
		coin.Definition{Path: "gold"},
		coin.Definition{Path: "ten", Condition: cond(coin.TotalFlips{Count: 10})},
		coin.Definition{Path: "gated", Condition: cond(coin.TotalFlips{Count: 1}, coin.HeadsFlips{Count: 1}, coin.TailsFlips{Count: 1})},
		coin.Definition{Path: "lucky", Condition: cond(coin.RandomChance{Chance: 0.07, RequiresActiveCoin: true, ActiveCoinPath: "gold"})},
		coin.Definition{Path: "multi", Condition: cond(coin.LandOnMultipleCoins{Paths: []string{"gold", "ten"}, Count: 1})},
		coin.Definition{Path: "row", Condition: cond(coin.LandOnCoinsWithCharacteristics{Filter: coin.Filter{Kind: coin.FilterHasEffect}, ConsecutiveCount: 4})},
	)
	tr := NewTracker(ctx, cat, progress.NewMemoryStore(), Options{})
	tr.TrackCoinLanding(ctx, "gold", true, 1, "gold", "gold")

	want := map[string]string{
		"gold":    "Unlocked",
		"ten":     "Flips 1/10",
		"gated":   "Prerequisites 1/2",
		"lucky":   "7% chance per flip with gold active",
		"multi":   "1/2 coins landed 1x",
		"row":     "In a row 0/4",
		"missing": "",
	}
	for path, w := range want {
		if got := tr.GetProgressDescription(path); got != w {
			t.Errorf("%s: got %q want %q", path, got, w)
		}
	}
}
