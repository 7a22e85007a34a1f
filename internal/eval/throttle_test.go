package eval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchThrottleLimitsConcurrency(t *testing.T) {
	th := newWatchThrottle()
	ctx := context.Background()

	for i := 0; i < defaultWatchConcurrency; i++ {
		require.NoError(t, th.Acquire(ctx))
	}

	acquired := make(chan struct{})
	go func() {
		_ = th.Acquire(context.Background())
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquired beyond configured concurrency")
	case <-time.After(20 * time.Millisecond):
	}

	th.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("did not acquire after release")
	}
}

func TestWatchThrottleReuseWindow(t *testing.T) {
	th := newWatchThrottle()
	key := cacheKey{TargetID: "t1", FrameIndex: 0, Expression: "x"}
	now := time.Now()

	assert.False(t, th.ShouldReuse(key, now))
	th.RecordRun(key, now)
	assert.True(t, th.ShouldReuse(key, now.Add(time.Second)))
	assert.False(t, th.ShouldReuse(key, now.Add(2*time.Second)))
}
