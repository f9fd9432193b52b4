package progress

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Key is the store key the progress blob lives under.
const Key = "coinUnlockProgress"

// Set is a string set that serializes as a sorted JSON list.
type Set map[string]struct{}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Add(v string) { s[v] = struct{}{} }

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

func (s Set) MarshalJSON() ([]byte, error) {
	out := s.Sorted()
	if out == nil {
		out = []string{}
	}
	return json.Marshal(out)
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	set := make(Set, len(list))
	for _, v := range list {
		set.Add(v)
	}
	*s = set
	return nil
}

// State is the mutable per-profile progress snapshot. All counters only grow,
// except CharacteristicConsecutiveCounts which resets on a broken run.
type State struct {
	TotalFlips                      int                  `json:"totalFlips"`
	HeadsFlips                      int                  `json:"headsFlips"`
	TailsFlips                      int                  `json:"tailsFlips"`
	LongestStreak                   int                  `json:"longestStreak"`
	LongestHeadsStreak              int                  `json:"longestHeadsStreak"`
	LongestTailsStreak              int                  `json:"longestTailsStreak"`
	CoinLandCounts                  map[string]int       `json:"coinLandCounts"`
	RandomUnlockedCoins             Set                  `json:"randomUnlockedCoins"`
	CoinUnlockTimestamps            map[string]time.Time `json:"coinUnlockTimestamps"`
	NotificationShownFor            Set                  `json:"notificationShownFor"`
	CharacteristicConsecutiveCounts map[string]int       `json:"characteristicConsecutiveCounts"`
}

// NewState returns the zero-valued first-run state.
func NewState() *State {
	s := &State{}
	s.normalize()
	return s
}

func (s *State) normalize() {
	if s.CoinLandCounts == nil {
		s.CoinLandCounts = make(map[string]int)
	}
	if s.RandomUnlockedCoins == nil {
		s.RandomUnlockedCoins = make(Set)
	}
	if s.CoinUnlockTimestamps == nil {
		s.CoinUnlockTimestamps = make(map[string]time.Time)
	}
	if s.NotificationShownFor == nil {
		s.NotificationShownFor = make(Set)
	}
	if s.CharacteristicConsecutiveCounts == nil {
		s.CharacteristicConsecutiveCounts = make(map[string]int)
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return NewState()
	}
	out := *s
	out.CoinLandCounts = maps.Clone(s.CoinLandCounts)
	out.RandomUnlockedCoins = maps.Clone(s.RandomUnlockedCoins)
	out.CoinUnlockTimestamps = maps.Clone(s.CoinUnlockTimestamps)
	out.NotificationShownFor = maps.Clone(s.NotificationShownFor)
	out.CharacteristicConsecutiveCounts = maps.Clone(s.CharacteristicConsecutiveCounts)
	out.normalize()
	return &out
}

// RecordStreak raises the longest-streak counters if streak beats them.
// side may be empty when the streak is not tied to a face.
func (s *State) RecordStreak(streak int, side string) {
	if streak > s.LongestStreak {
		s.LongestStreak = streak
	}
	switch side {
	case "heads":
		if streak > s.LongestHeadsStreak {
			s.LongestHeadsStreak = streak
		}
	case "tails":
		if streak > s.LongestTailsStreak {
			s.LongestTailsStreak = streak
		}
	}
}

// Encode serializes s to the stored JSON blob.
func Encode(s *State) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return b, nil
}

// Decode parses a stored blob. Missing fields come back zero-valued.
func Decode(b []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	s.normalize()
	return &s, nil
}

// Merge folds offline, progress made while durable storage was unreachable,
// into durable and returns the combined state. Counters add up, longest
// streaks and consecutive counts take the larger value, sets are unioned and
// the earliest unlock time wins.
func Merge(durable, offline *State) *State {
	out := durable.Clone()
	if offline == nil {
		return out
	}
	out.TotalFlips += offline.TotalFlips
	out.HeadsFlips += offline.HeadsFlips
	out.TailsFlips += offline.TailsFlips
	out.LongestStreak = max(out.LongestStreak, offline.LongestStreak)
	out.LongestHeadsStreak = max(out.LongestHeadsStreak, offline.LongestHeadsStreak)
	out.LongestTailsStreak = max(out.LongestTailsStreak, offline.LongestTailsStreak)
	for p, n := range offline.CoinLandCounts {
		out.CoinLandCounts[p] += n
	}
	for p := range offline.RandomUnlockedCoins {
		out.RandomUnlockedCoins.Add(p)
	}
	for p := range offline.NotificationShownFor {
		out.NotificationShownFor.Add(p)
	}
	for p, ts := range offline.CoinUnlockTimestamps {
		if cur, ok := out.CoinUnlockTimestamps[p]; !ok || ts.Before(cur) {
			out.CoinUnlockTimestamps[p] = ts
		}
	}
	for p, n := range offline.CharacteristicConsecutiveCounts {
		out.CharacteristicConsecutiveCounts[p] = max(out.CharacteristicConsecutiveCounts[p], n)
	}
	return out
}
