package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepThreshold is the table size above which expired entries are swept.
const DefaultSweepThreshold = 1000

type fixedEntry struct {
	count     int
	expiresAt time.Time
}

// FixedWindow admits at most Limit requests per key in a window that starts
// with the key's first request. When the window has expired the count resets
// to one. Once the table holds more than SweepThreshold keys, every expired
// entry is removed in one pass.
type FixedWindow struct {
	Limit          int
	Window         time.Duration
	SweepThreshold int
	Clock          func() time.Time

	mu      sync.Mutex
	entries map[string]*fixedEntry
}

// NewFixedWindow returns a fixed-window limiter. The contact endpoint uses
// 3 requests per hour.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		Limit:          limit,
		Window:         window,
		SweepThreshold: DefaultSweepThreshold,
		entries:        make(map[string]*fixedEntry),
	}
}

// Allow admits the request when the key's window is new or expired, or when
// its count is below Limit.
func (f *FixedWindow) Allow(_ context.Context, key string) (Decision, error) {
	key = normalizeKey(key)
	now := nowFrom(f.Clock)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.entries == nil {
		f.entries = make(map[string]*fixedEntry)
	}

	entry, ok := f.entries[key]
	switch {
	case !ok || !now.Before(entry.expiresAt):
		entry = &fixedEntry{count: 1, expiresAt: now.Add(f.Window)}
		f.entries[key] = entry
	case entry.count < f.Limit:
		entry.count++
	default:
		return Decision{Allowed: false, RetryAfter: entry.expiresAt.Sub(now)}, nil
	}

	f.sweep(now)

	remaining := f.Limit - entry.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}

func (f *FixedWindow) sweep(now time.Time) {
	threshold := f.SweepThreshold
	if threshold <= 0 {
		threshold = DefaultSweepThreshold
	}
	if len(f.entries) <= threshold {
		return
	}
	for key, entry := range f.entries {
		if !now.Before(entry.expiresAt) {
			delete(f.entries, key)
		}
	}
}

// Len reports how many keys are tracked, expired or not.
func (f *FixedWindow) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
