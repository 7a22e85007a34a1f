package eval

import (
	"testing"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCacheEmptyNeverOverwritesNonEmpty(t *testing.T) {
	c := newResultCache()
	key := cacheKey{TargetID: "t1", FrameIndex: 0, Expression: "x"}

	c.Put(key, rdbgxml.EvalValue{Display: "5"})
	c.Put(key, rdbgxml.EvalValue{})

	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "5", v.Display)
}

func TestResultCacheStoresFirstEmptyWhenNoEntryYet(t *testing.T) {
	c := newResultCache()
	key := cacheKey{TargetID: "t1", FrameIndex: 0, Expression: "x"}

	c.Put(key, rdbgxml.EvalValue{})
	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestResultCacheClear(t *testing.T) {
	c := newResultCache()
	key := cacheKey{TargetID: "t1", FrameIndex: 0, Expression: "x"}
	c.Put(key, rdbgxml.EvalValue{Display: "5"})
	c.Clear()
	_, ok := c.Get(key)
	assert.False(t, ok)
}
