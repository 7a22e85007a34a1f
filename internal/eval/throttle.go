package eval

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// defaultWatchConcurrency caps how many watch evaluations (DAP
// `evaluate(context=watch)`) may be in flight at once, so a panel full
// of watches doesn't flood the server with concurrent evalExpr calls.
const defaultWatchConcurrency = 4

// watchReuseWindow is how long a just-resolved watch result is reused
// for an identical (target, frame, expression) re-evaluation request
// instead of reissuing evalExpr.
const watchReuseWindow = 1500 * time.Millisecond

// watchThrottle bounds concurrent watch evaluations and short-circuits
// an immediate repeat of the same watch.
type watchThrottle struct {
	sem *semaphore.Weighted

	mu      sync.Mutex
	lastRun map[cacheKey]time.Time
}

func newWatchThrottle() *watchThrottle {
	return &watchThrottle{
		sem:     semaphore.NewWeighted(defaultWatchConcurrency),
		lastRun: map[cacheKey]time.Time{},
	}
}

// Acquire blocks until a watch-evaluation slot is free or ctx is done.
func (t *watchThrottle) Acquire(ctx context.Context) error {
	return t.sem.Acquire(ctx, 1)
}

func (t *watchThrottle) Release() {
	t.sem.Release(1)
}

// ShouldReuse reports whether key was evaluated within the reuse
// window, in which case the cached value should be returned without a
// fresh evalExpr.
func (t *watchThrottle) ShouldReuse(key cacheKey, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.lastRun[key]
	return ok && now.Sub(last) < watchReuseWindow
}

func (t *watchThrottle) RecordRun(key cacheKey, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastRun[key] = now
}
