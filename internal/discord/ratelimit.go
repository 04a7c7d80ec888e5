package discord

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	remaining int
	resetAt   time.Time
}

// BucketStore tracks Discord rate-limit buckets per route. Discord limits by
// route + application, not per end user, so one store is shared by every
// caller in the process and passed to each Client rather than living in a
// package global. All methods are safe for concurrent use.
type BucketStore struct {
	mu      sync.Mutex
	buckets map[string]bucket
}

func NewBucketStore() *BucketStore {
	return &BucketStore{buckets: make(map[string]bucket)}
}

// Wait suspends the caller until the bucket for route permits a dispatch.
// A bucket with calls remaining, or whose reset time has passed, returns
// immediately. The wait is a single bounded sleep, cancellable via ctx.
func (s *BucketStore) Wait(ctx context.Context, route string) error {
	s.mu.Lock()
	b, ok := s.buckets[route]
	var delay time.Duration
	if ok && b.remaining <= 0 {
		delay = time.Until(b.resetAt)
	}
	s.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	return sleepContext(ctx, delay)
}

// Update records the rate-limit state reported by a response. Header values
// are advisory: they are applied after every call regardless of outcome, and
// the remote service remains the source of truth.
func (s *BucketStore) Update(route string, remaining int, resetAfter time.Duration) {
	s.mu.Lock()
	s.buckets[route] = bucket{
		remaining: remaining,
		resetAt:   time.Now().Add(resetAfter),
	}
	s.mu.Unlock()
}

// Remaining reports the tracked remaining-call count for a route, or -1 if
// the route has never been seen.
func (s *BucketStore) Remaining(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[route]
	if !ok {
		return -1
	}
	return b.remaining
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
