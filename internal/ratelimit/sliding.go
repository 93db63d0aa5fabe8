package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow admits at most Limit requests per key within any trailing
// Window. Timestamps older than the window are pruned on access, and a key
// whose timestamps have all expired is dropped from the table.
type SlidingWindow struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time

	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewSlidingWindow returns a sliding-window limiter. The chat endpoint uses
// 10 requests per minute.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		Limit:   limit,
		Window:  window,
		entries: make(map[string][]time.Time),
	}
}

// Allow records a request for key unless the key is already at the ceiling.
// A rejected request leaves the table untouched apart from pruning.
func (s *SlidingWindow) Allow(_ context.Context, key string) (Decision, error) {
	key = normalizeKey(key)
	now := nowFrom(s.Clock)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries == nil {
		s.entries = make(map[string][]time.Time)
	}

	recent := s.prune(s.entries[key], now)
	if len(recent) >= s.Limit {
		retry := s.Window
		if len(recent) > 0 {
			s.entries[key] = recent
			retry = recent[0].Add(s.Window).Sub(now)
		} else {
			delete(s.entries, key)
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	recent = append(recent, now)
	s.entries[key] = recent
	return Decision{Allowed: true, Remaining: s.Limit - len(recent)}, nil
}

// prune keeps timestamps with now - t < Window. The input slice is ordered
// oldest first, so the survivors are a suffix.
func (s *SlidingWindow) prune(stamps []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(stamps) && now.Sub(stamps[i]) >= s.Window {
		i++
	}
	if i == 0 {
		return stamps
	}
	kept := make([]time.Time, len(stamps)-i, len(stamps)-i+1)
	copy(kept, stamps[i:])
	return kept
}

// Len reports how many keys are tracked. Keys whose timestamps have all
// expired are removed on their next access.
func (s *SlidingWindow) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Count returns the number of in-window requests recorded for key.
func (s *SlidingWindow) Count(key string) int {
	key = normalizeKey(key)
	now := nowFrom(s.Clock)

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.prune(s.entries[key], now)
	if len(recent) == 0 {
		delete(s.entries, key)
		return 0
	}
	s.entries[key] = recent
	return len(recent)
}
