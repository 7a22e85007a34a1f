package eval

import (
	"sync"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

// cacheKey identifies one evaluated expression at a specific stop.
type cacheKey struct {
	TargetID   string
	FrameIndex int
	Expression string
}

// resultCache stores the last resolved value per (target, frame,
// expression). An empty server response is never allowed to overwrite
// an existing non-empty entry, since the server occasionally answers
// with nothing while the real value is still in flight via ping.
type resultCache struct {
	mu      sync.Mutex
	entries map[cacheKey]rdbgxml.EvalValue
}

func newResultCache() *resultCache {
	return &resultCache{entries: map[cacheKey]rdbgxml.EvalValue{}}
}

// Get returns the cached value, if any.
func (c *resultCache) Get(key cacheKey) (rdbgxml.EvalValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores v unless it is empty and an entry already exists.
func (c *resultCache) Put(key cacheKey, v rdbgxml.EvalValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isEmpty(v) {
		if _, exists := c.entries[key]; exists {
			return
		}
	}
	c.entries[key] = v
}

// Clear drops every cached entry (called on disconnect; per-step
// staleness is handled by keying on frame/target rather than wiping
// here, since a cached value for a still-live frame remains valid).
func (c *resultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[cacheKey]rdbgxml.EvalValue{}
}

func isEmpty(v rdbgxml.EvalValue) bool {
	return v.Display == "" && v.TypeName == "" && !v.Expandable && len(v.Children) == 0
}
