package rpoll

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprStoreTakeOnce(t *testing.T) {
	s := newExprStore(10*time.Millisecond, nil)
	s.Put("e1", rdbgxml.EvalValue{Display: "5"})

	v, ok := s.Take("e1")
	require.True(t, ok)
	assert.Equal(t, "5", v.Display)

	_, ok = s.Take("e1")
	assert.False(t, ok)
}

func TestExprStoreFirstArrivalWins(t *testing.T) {
	s := newExprStore(10*time.Millisecond, nil)
	s.Put("e1", rdbgxml.EvalValue{Display: "first"})
	s.Put("e1", rdbgxml.EvalValue{Display: "second"})

	v, ok := s.Take("e1")
	require.True(t, ok)
	assert.Equal(t, "first", v.Display)
}

func TestExprStoreDebouncesInvalidate(t *testing.T) {
	var calls atomic.Int32
	s := newExprStore(20*time.Millisecond, func() { calls.Add(1) })

	s.Put("e1", rdbgxml.EvalValue{Display: "1"})
	s.Put("e2", rdbgxml.EvalValue{Display: "2"})

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
