package rpoll

import (
	"sync"
	"time"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

// exprStore holds exprEvaluated results keyed by expressionResultID
// until the one consumer waiting on that id takes it. It is touched
// both by the polling loop (producer) and by eval-engine waiters
// (consumers) running on separate goroutines, so unlike the
// single-task reference registry it does need a mutex.
type exprStore struct {
	mu      sync.Mutex
	pending map[string]rdbgxml.EvalValue

	debounce      time.Duration
	invalidateMu  sync.Mutex
	invalidateSet bool
	invalidateFn  func()
}

func newExprStore(debounce time.Duration, invalidateFn func()) *exprStore {
	return &exprStore{
		pending:      map[string]rdbgxml.EvalValue{},
		debounce:     debounce,
		invalidateFn: invalidateFn,
	}
}

// Put stores a value for id if nothing is already waiting there
// (first arrival wins), and schedules a debounced invalidate signal.
func (s *exprStore) Put(id string, v rdbgxml.EvalValue) {
	s.mu.Lock()
	if _, exists := s.pending[id]; !exists {
		s.pending[id] = v
	}
	s.mu.Unlock()

	s.scheduleInvalidate()
}

// Take removes and returns the value for id, if present (take-once).
func (s *exprStore) Take(id string) (rdbgxml.EvalValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return v, ok
}

// scheduleInvalidate fires invalidateFn once, `debounce` after the
// first arrival of a batch; further arrivals within the window don't
// reschedule, matching "one invalidate per batch" rather than one per
// event.
func (s *exprStore) scheduleInvalidate() {
	s.invalidateMu.Lock()
	if s.invalidateSet {
		s.invalidateMu.Unlock()
		return
	}
	s.invalidateSet = true
	s.invalidateMu.Unlock()

	go func() {
		time.Sleep(s.debounce)
		s.invalidateMu.Lock()
		s.invalidateSet = false
		s.invalidateMu.Unlock()
		if s.invalidateFn != nil {
			s.invalidateFn()
		}
	}()
}
