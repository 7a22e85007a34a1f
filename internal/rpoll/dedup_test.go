package rpoll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupWindowSuppressesWithinWindow(t *testing.T) {
	d := newDedupWindow(400 * time.Millisecond)
	base := time.Now()
	key := stopKey{Presentation: "Module.Proc", Line: 42}

	assert.False(t, d.observe(key, base))
	assert.True(t, d.observe(key, base.Add(100*time.Millisecond)))
	assert.True(t, d.observe(key, base.Add(399*time.Millisecond)))
}

func TestDedupWindowAllowsAfterWindowElapses(t *testing.T) {
	d := newDedupWindow(400 * time.Millisecond)
	base := time.Now()
	key := stopKey{Presentation: "Module.Proc", Line: 42}

	assert.False(t, d.observe(key, base))
	assert.False(t, d.observe(key, base.Add(401*time.Millisecond)))
}

func TestDedupWindowDistinguishesDifferentKeys(t *testing.T) {
	d := newDedupWindow(400 * time.Millisecond)
	base := time.Now()

	assert.False(t, d.observe(stopKey{Presentation: "A", Line: 1}, base))
	assert.False(t, d.observe(stopKey{Presentation: "A", Line: 2}, base.Add(10*time.Millisecond)))
	assert.False(t, d.observe(stopKey{Presentation: "B", Line: 1}, base.Add(20*time.Millisecond)))
}
