package refs

import (
	"testing"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIssuesDistinctHandles(t *testing.T) {
	r := NewRegistry()
	l1 := r.NewLocals(1, 0)
	v1 := r.NewVariable("x.y", 1, 0)
	l2 := r.NewLocals(2, 0)
	assert.NotEqual(t, l1, v1)
	assert.NotEqual(t, l1, l2)
	assert.NotEqual(t, v1, l2)
}

func TestRegistryLocalsLookup(t *testing.T) {
	r := NewRegistry()
	h := r.NewLocals(3, 2)
	e, ok := r.Locals(h)
	require.True(t, ok)
	assert.Equal(t, 3, e.ThreadID)
	assert.Equal(t, 2, e.FrameIndex)

	_, ok = r.Locals(h + 999)
	assert.False(t, ok)
}

func TestRegistryCacheChildren(t *testing.T) {
	r := NewRegistry()
	h := r.NewVariable("obj.field", 1, 0)
	r.CacheChildren(h, []rdbgxml.EvalChild{{Name: "a"}})

	e, ok := r.Variable(h)
	require.True(t, ok)
	require.Len(t, e.Children, 1)
	assert.Equal(t, "a", e.Children[0].Name)
}

func TestRegistryClearResetsBothTables(t *testing.T) {
	r := NewRegistry()
	l := r.NewLocals(1, 0)
	v := r.NewVariable("x", 1, 0)
	r.Clear()

	_, ok := r.Locals(l)
	assert.False(t, ok)
	_, ok = r.Variable(v)
	assert.False(t, ok)
}
