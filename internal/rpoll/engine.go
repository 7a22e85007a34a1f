package rpoll

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

// Sender is the minimal transport surface the engine needs. The
// session orchestrator implements it, owning the alias/debuggerId/
// dialect details that rpoll itself has no business knowing about.
type Sender interface {
	PingDebugUIParams(ctx context.Context) ([]byte, error)
	GetDbgTargets(ctx context.Context) ([]byte, error)
	PingTarget(ctx context.Context, targetIDStr, rteProcVersion string) ([]byte, error)
}

// Config holds the adaptive-cadence timing the engine runs with. The
// engine hardcodes none of these durations; internal/session fills them
// from its configured millisecond fields (internal/session/config.go),
// except TargetsRecoveryPeriod, DedupWindow and ExprDebounce, which it
// fixes at 800ms, 400ms and 150ms.
type Config struct {
	FastInterval          time.Duration
	SlowInterval          time.Duration
	TargetsRecoveryPeriod time.Duration
	TargetMinInterval     time.Duration
	ImmediateDelays       []time.Duration
	DedupWindow           time.Duration
	ExprDebounce          time.Duration
}

// KnownTargets lets the engine ask the orchestrator which targets it
// currently knows about, for the "any target stopped" cadence
// decision and the "no targets known" recovery poll.
type KnownTargets interface {
	AnyStopped() bool
	Count() int
	IDs() []string
}

// Engine runs the adaptive ping loop and delivers decoded events on
// Events(). Call Run once per session; it returns when ctx is done.
type Engine struct {
	sender  Sender
	targets KnownTargets
	cfg     Config

	events chan rdbgxml.Event

	dedup      *dedupWindow
	throttle   *targetThrottle
	exprs      *exprStore
	immediate  *immediateScheduler
	lastNoTgts time.Time
}

// NewEngine builds an Engine. onInvalidate is called (debounced) after
// an exprEvaluated batch arrives, so the caller can emit a DAP
// `invalidated(variables)` event.
func NewEngine(sender Sender, targets KnownTargets, cfg Config, onInvalidate func()) *Engine {
	e := &Engine{
		sender:   sender,
		targets:  targets,
		cfg:      cfg,
		events:   make(chan rdbgxml.Event, 64),
		dedup:    newDedupWindow(cfg.DedupWindow),
		throttle: newTargetThrottle(),
	}
	e.exprs = newExprStore(cfg.ExprDebounce, onInvalidate)
	e.immediate = newImmediateScheduler(cfg.ImmediateDelays, func(ctx context.Context) {
		e.pingOnce(ctx)
	})
	return e
}

// Events returns the channel the session orchestrator drains decoded
// events from.
func (e *Engine) Events() <-chan rdbgxml.Event {
	return e.events
}

// TakeExprResult pops a take-once exprEvaluated result, if one has
// already arrived via ping.
func (e *Engine) TakeExprResult(expressionResultID string) (rdbgxml.EvalValue, bool) {
	return e.exprs.Take(expressionResultID)
}

// NotifyStep triggers the immediate post-step ping schedule
// (50/100/200ms by default).
func (e *Engine) NotifyStep(ctx context.Context) {
	e.immediate.Schedule(ctx)
}

// Run alternates fast/slow cadence pings until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.events)
	for {
		interval := e.cfg.FastInterval
		if e.targets.AnyStopped() {
			interval = e.cfg.SlowInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		e.pingOnce(ctx)
		e.maybeRecoverTargets(ctx)
		e.pingKnownTargets(ctx)
	}
}

func (e *Engine) pingOnce(ctx context.Context) {
	body, err := sendBestEffort(ctx, func(ctx context.Context) ([]byte, error) {
		return e.sender.PingDebugUIParams(ctx)
	})
	if err != nil {
		logrus.WithError(err).Debug("rdbg: ping failed, will retry next cycle")
		return
	}

	root, err := rdbgxml.ParseResponse(body)
	if err != nil {
		logrus.WithError(err).Debug("rdbg: ping response was not valid xml")
		return
	}

	var events []rdbgxml.Event
	events = append(events, rdbgxml.ParseEvents(root)...)
	if data := root.Get("data"); data != nil && data.Text != "" {
		if payload, err := rdbgxml.DecodeDataEnvelope(data.Text); err == nil {
			events = append(events, rdbgxml.EventsFromPingPayload(payload)...)
		}
	}

	e.dispatch(events)
}

func (e *Engine) dispatch(events []rdbgxml.Event) {
	now := time.Now()
	for _, ev := range events {
		if ev.Kind == rdbgxml.EventCallStackFormed {
			key := stopKey{Line: innermostLine(ev), Presentation: innermostPresentation(ev)}
			if e.dedup.observe(key, now) {
				continue
			}
			e.immediate.Cancel()
		}
		if ev.Kind == rdbgxml.EventExprEvaluated {
			e.exprs.Put(ev.ExpressionResultID, ev.Value)
		}
		e.events <- ev
	}
}

func (e *Engine) maybeRecoverTargets(ctx context.Context) {
	if e.targets.Count() > 0 {
		return
	}
	if time.Since(e.lastNoTgts) < e.cfg.TargetsRecoveryPeriod {
		return
	}
	e.lastNoTgts = time.Now()

	body, err := sendBestEffort(ctx, func(ctx context.Context) ([]byte, error) {
		return e.sender.GetDbgTargets(ctx)
	})
	if err != nil {
		logrus.WithError(err).Debug("rdbg: getDbgTargets recovery poll failed")
		return
	}
	root, err := rdbgxml.ParseResponse(body)
	if err != nil {
		return
	}
	for _, t := range rdbgxml.ParseTargets(root) {
		e.events <- rdbgxml.Event{Kind: rdbgxml.EventTargetStarted, Target: t}
	}
}

func (e *Engine) pingKnownTargets(ctx context.Context) {
	now := time.Now()
	if e.targets.AnyStopped() {
		return
	}
	for _, id := range e.targets.IDs() {
		if !e.throttle.shouldSend(id, now, e.cfg.TargetMinInterval) {
			continue
		}
		e.throttle.recordSent(id, now)

		version := e.throttle.version(id)
		body, err := sendBestEffort(ctx, func(ctx context.Context) ([]byte, error) {
			return e.sender.PingTarget(ctx, id, version)
		})
		if err != nil {
			continue
		}
		root, err := rdbgxml.ParseResponse(body)
		if err != nil {
			continue
		}
		if v := root.Get("rteProcVersion"); v != nil {
			e.throttle.recordVersion(id, v.Text)
		}
	}
}

func innermostLine(ev rdbgxml.Event) int {
	if len(ev.Stack) == 0 {
		return 0
	}
	return ev.Stack[0].Line
}

func innermostPresentation(ev rdbgxml.Event) string {
	if len(ev.Stack) == 0 {
		return ""
	}
	return ev.Stack[0].Presentation
}

// sendBestEffort wraps a single ping/recovery send with a capped
// constant-interval retry, so a transient transport hiccup doesn't
// surface as a session-ending error (per the "swallow and continue"
// ping contract).
func sendBestEffort(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	return backoff.Retry(ctx, func() ([]byte, error) {
		return fn(ctx)
	}, backoff.WithBackOff(backoff.NewConstantBackOff(50*time.Millisecond)), backoff.WithMaxTries(3))
}
