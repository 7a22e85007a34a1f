package eval

import (
	"context"
	"time"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgerr"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

// Sender builds and sends the Dialect-B eval commands. The session
// orchestrator implements it, owning the alias/debuggerId/UUID
// generation this package doesn't need to know about.
type Sender interface {
	SendEvalExpr(ctx context.Context, targetID string, frameIndex int, expression string, interfaces rdbgxml.EvalInterfaces) (expressionResultID string, value rdbgxml.EvalValue, err error)
	SendEvalLocalVariables(ctx context.Context, targetID string, frameIndex int, extra []string) (expressionResultID string, value rdbgxml.EvalValue, batch map[string]rdbgxml.EvalValue, err error)
}

// ExprWaiter exposes the polling engine's take-once exprEvaluated
// store, consulted when a direct HTTP response comes back empty.
type ExprWaiter interface {
	TakeExprResult(expressionResultID string) (rdbgxml.EvalValue, bool)
}

// Config holds the retry/poll timing the engine runs with.
type Config struct {
	EvalExprRetryDelays  []time.Duration
	VariablesRetryDelays []time.Duration
	VarFetchDelay        time.Duration
	VarFetchMaxPolls     int
}

// State is the per-request lifecycle from SPEC_FULL.md §4.6.
type State int

const (
	StateRequested State = iota
	StateSent
	StateResolved
	StatePolling
	StateStoppedOnly
	StateError
)

// Engine evaluates expressions and fetches locals with retry, a
// never-overwrite-on-empty cache, container-shape fallbacks and
// prefetch of expandable children.
type Engine struct {
	sender Sender
	waiter ExprWaiter
	cfg    Config

	cache    *resultCache
	throttle *watchThrottle
	prefetch *prefetcher
}

// NewEngine builds an Engine.
func NewEngine(sender Sender, waiter ExprWaiter, cfg Config) *Engine {
	e := &Engine{
		sender:   sender,
		waiter:   waiter,
		cfg:      cfg,
		cache:    newResultCache(),
		throttle: newWatchThrottle(),
	}
	e.prefetch = newPrefetcher(e)
	return e
}

// EvalResult wraps an EvalValue with the state it was resolved in, so
// callers distinguish "value not yet known, will invalidate later"
// from a genuinely empty result.
type EvalResult struct {
	Value rdbgxml.EvalValue
	State State
}

// EvalExpr evaluates expression at (targetId, frameIndex), applying
// the retry-then-poll flow and the dictionary/value-table fallbacks.
// isWatch gates the concurrency throttle and reuse window, which only
// apply to DAP `evaluate(context=watch)` calls.
func (e *Engine) EvalExpr(ctx context.Context, targetID string, frameIndex int, expression string, isWatch bool) (EvalResult, error) {
	key := cacheKey{TargetID: targetID, FrameIndex: frameIndex, Expression: expression}

	if isWatch {
		now := time.Now()
		if e.throttle.ShouldReuse(key, now) {
			if v, ok := e.cache.Get(key); ok {
				return EvalResult{Value: v, State: StateResolved}, nil
			}
		}
		if err := e.throttle.Acquire(ctx); err != nil {
			return EvalResult{}, err
		}
		defer e.throttle.Release()
		defer e.throttle.RecordRun(key, now)
	}

	resultID, v, err := e.sender.SendEvalExpr(ctx, targetID, frameIndex, expression, rdbgxml.InterfacesContext)
	if err != nil {
		if rdbgerr.IsOnlyWhileStopped(err.Error()) {
			if cached, ok := e.cache.Get(key); ok {
				return EvalResult{Value: cached, State: StateStoppedOnly}, nil
			}
			return EvalResult{State: StateStoppedOnly}, nil
		}
		return EvalResult{State: StateError}, err
	}

	if isEmpty(v) {
		v, err = e.retryThenPoll(ctx, resultID, func() (rdbgxml.EvalValue, error) {
			_, retried, err := e.sender.SendEvalExpr(ctx, targetID, frameIndex, expression, rdbgxml.InterfacesContext)
			return retried, err
		})
		if err != nil {
			return EvalResult{State: StateError}, err
		}
	}

	v = e.applyContainerFallback(ctx, targetID, frameIndex, expression, v)
	e.cache.Put(key, v)

	if v.Expandable {
		e.prefetch.schedule(targetID, frameIndex, v.Children)
	}

	state := StateResolved
	if isEmpty(v) {
		state = StatePolling
	}
	return EvalResult{Value: v, State: state}, nil
}

// EvalLocalVariables fetches the locals at (targetId, frameIndex),
// optionally batching extra watch expressions into the same request.
func (e *Engine) EvalLocalVariables(ctx context.Context, targetID string, frameIndex int, extra []string) (EvalResult, map[string]rdbgxml.EvalValue, error) {
	resultID, v, batch, err := e.sender.SendEvalLocalVariables(ctx, targetID, frameIndex, extra)
	if err != nil {
		if rdbgerr.IsOnlyWhileStopped(err.Error()) {
			return EvalResult{State: StateStoppedOnly}, nil, nil
		}
		return EvalResult{State: StateError}, nil, err
	}

	if isEmpty(v) {
		v, err = e.retryThenPoll(ctx, resultID, func() (rdbgxml.EvalValue, error) {
			_, retried, retriedBatch, err := e.sender.SendEvalLocalVariables(ctx, targetID, frameIndex, extra)
			batch = retriedBatch
			return retried, err
		})
		if err != nil {
			return EvalResult{State: StateError}, nil, err
		}
	}

	e.prefetch.schedule(targetID, frameIndex, v.Children)

	return EvalResult{Value: v, State: StateResolved}, batch, nil
}

// retryThenPoll implements the shared "empty response" recovery flow:
// a short sequence of direct retries, then polling the exprEvaluated
// store up to VarFetchMaxPolls times.
func (e *Engine) retryThenPoll(ctx context.Context, expressionResultID string, retry func() (rdbgxml.EvalValue, error)) (rdbgxml.EvalValue, error) {
	for _, d := range e.cfg.EvalExprRetryDelays {
		select {
		case <-ctx.Done():
			return rdbgxml.EvalValue{}, ctx.Err()
		case <-time.After(d):
		}
		v, err := retry()
		if err != nil {
			return rdbgxml.EvalValue{}, err
		}
		if !isEmpty(v) {
			return v, nil
		}
	}

	if e.waiter != nil {
		for i := 0; i < e.cfg.VarFetchMaxPolls; i++ {
			if v, ok := e.waiter.TakeExprResult(expressionResultID); ok {
				return v, nil
			}
			select {
			case <-ctx.Done():
				return rdbgxml.EvalValue{}, ctx.Err()
			case <-time.After(e.cfg.VarFetchDelay):
			}
		}
	}

	return rdbgxml.EvalValue{}, nil
}

// ClearCache drops every cached result, called on disconnect.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}
