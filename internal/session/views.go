package session

import (
	"context"
	"fmt"
	"time"

	"github.com/xtding233/coinflip/internal/coin"
)

// Stats is a read-only summary of the session's progress.
type Stats struct {
	TotalFlips         int       `json:"totalFlips"`
	HeadsFlips         int       `json:"headsFlips"`
	TailsFlips         int       `json:"tailsFlips"`
	LongestStreak      int       `json:"longestStreak"`
	LongestHeadsStreak int       `json:"longestHeadsStreak"`
	LongestTailsStreak int       `json:"longestTailsStreak"`
	CurrentStreak      int       `json:"currentStreak"`
	LastSide           coin.Side `json:"lastSide,omitempty"`
	Unlocked           int       `json:"unlocked"`
	Coins              int       `json:"coins"`
	AutoFlipIntervalMs int       `json:"autoFlipIntervalMs"`
}

// CoinStatus is one catalog entry as seen by this player.
type CoinStatus struct {
	Path       string     `json:"path"`
	Rarity     string     `json:"rarity"`
	Condition  string     `json:"condition"`
	Effect     string     `json:"effect"`
	Unlocked   bool       `json:"unlocked"`
	Progress   string     `json:"progress"`
	LandCount  int        `json:"landCount"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

func (s *Session) Stats() Stats {
	st := s.tracker.State()
	streak, last := s.Streak()
	return Stats{
		TotalFlips:         st.TotalFlips,
		HeadsFlips:         st.HeadsFlips,
		TailsFlips:         st.TailsFlips,
		LongestStreak:      st.LongestStreak,
		LongestHeadsStreak: st.LongestHeadsStreak,
		LongestTailsStreak: st.LongestTailsStreak,
		CurrentStreak:      streak,
		LastSide:           last,
		Unlocked:           len(s.tracker.Unlocked()),
		Coins:              s.tracker.Catalog().Len(),
		AutoFlipIntervalMs: s.AutoFlipInterval(),
	}
}

// Coins lists every catalog coin in declaration order.
func (s *Session) Coins() []CoinStatus {
	st := s.tracker.State()
	eval := s.tracker.Evaluator()
	defs := s.tracker.Catalog().Coins()
	out := make([]CoinStatus, 0, len(defs))
	for _, def := range defs {
		out = append(out, coinStatus(def, eval.IsUnlocked(def, st), eval.Describe(def, st), st.CoinLandCounts[def.Path], st.CoinUnlockTimestamps))
	}
	return out
}

// Coin describes the coin at path.
func (s *Session) Coin(path string) (CoinStatus, bool) {
	def, ok := s.tracker.Catalog().Lookup(path)
	if !ok {
		return CoinStatus{}, false
	}
	st := s.tracker.State()
	eval := s.tracker.Evaluator()
	return coinStatus(def, eval.IsUnlocked(def, st), eval.Describe(def, st), st.CoinLandCounts[path], st.CoinUnlockTimestamps), true
}

func coinStatus(def coin.Definition, unlocked bool, progress string, lands int, stamps map[string]time.Time) CoinStatus {
	cs := CoinStatus{
		Path:      def.Path,
		Rarity:    string(def.Rarity),
		Condition: string(def.Condition.Kind()),
		Effect:    string(coin.KindOf(def.Effect)),
		Unlocked:  unlocked,
		Progress:  progress,
		LandCount: lands,
	}
	if ts, ok := stamps[def.Path]; ok {
		cs.UnlockedAt = &ts
	}
	return cs
}

// PendingNotifications lists unlocked coins whose toast has not been shown.
func (s *Session) PendingNotifications() []string {
	defs := s.tracker.PendingNotifications()
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Path)
	}
	return out
}

// AckNotification marks the unlock toast for path as shown.
func (s *Session) AckNotification(ctx context.Context, path string) error {
	if !s.tracker.Catalog().Has(path) {
		return fmt.Errorf("%w: %s", ErrUnknownCoin, path)
	}
	s.tracker.MarkNotificationShown(ctx, path)
	return nil
}
