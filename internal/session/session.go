// Package session implements the orchestrator tying the XML codec,
// HTTP transport, metadata resolver, reference registry, polling
// engine and evaluation engine together into the single stateful
// object a DAP adapter drives.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/rdbg-bridge/rdbg-dap/internal/eval"
	"github.com/rdbg-bridge/rdbg-dap/internal/metadata"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/rdbg-bridge/rdbg-dap/internal/refs"
	"github.com/rdbg-bridge/rdbg-dap/internal/rpoll"
	"github.com/rdbg-bridge/rdbg-dap/internal/transport"
)

// EventKind discriminates the events the orchestrator surfaces to the
// DAP adapter, which translates each into the corresponding DAP
// notification.
type EventKind int

const (
	EventInitialized EventKind = iota
	EventThreadStarted
	EventThreadExited
	EventStopped
	EventContinued
	EventInvalidated
	EventTerminated
	EventOutput
)

// Event is one notification the adapter must turn into a DAP event.
type Event struct {
	Kind     EventKind
	ThreadID int
	Reason   string // stopped reason: "breakpoint", "step", "pause"
	Message  string // EventOutput payload
}

// Orchestrator owns one debug session end to end: the HTTP client, the
// metadata index, the reference registry, the polling and evaluation
// engines, and the attached-target set. It implements rpoll.Sender and
// eval.Sender so those engines never see transport or XML directly.
type Orchestrator struct {
	cfg        Config
	client     *transport.Client
	alias      string
	debuggerID uuid.UUID
	launcher   RuntimeLauncher

	idx  *metadata.Index
	Refs *refs.Registry

	poll *rpoll.Engine
	Eval *eval.Engine

	targets           *targetSet
	bps               *sourceBreakpoints
	autoAttachAllowed map[string]bool

	events chan Event
}

// New builds an Orchestrator. idx may be nil for a session that has
// not yet resolved a configuration root (breakpoints set before then
// are buffered but never reach the server).
func New(cfg Config, client *transport.Client, alias string, idx *metadata.Index, launcher RuntimeLauncher) *Orchestrator {
	if launcher == nil {
		launcher = noopLauncher{}
	}
	o := &Orchestrator{
		cfg:               cfg,
		client:            client,
		alias:             alias,
		debuggerID:        uuid.New(),
		launcher:          launcher,
		idx:               idx,
		Refs:              refs.NewRegistry(),
		targets:           newTargetSet(),
		bps:               newSourceBreakpoints(),
		autoAttachAllowed: map[string]bool{},
		events:            make(chan Event, 32),
	}

	o.poll = rpoll.NewEngine(o, o.targets, rpollConfigFromTiming(cfg.Timing), o.onInvalidate)
	o.Eval = eval.NewEngine(o, o.poll, evalConfigFromTiming(cfg.Timing))
	return o
}

// Events returns the channel the DAP adapter drains.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// RunPolling starts the adaptive ping loop. Call once, after a
// successful attach sequence; it returns when ctx is cancelled.
func (o *Orchestrator) RunPolling(ctx context.Context) {
	go o.forwardPollEvents(ctx)
	o.poll.Run(ctx)
}

func (o *Orchestrator) onInvalidate() {
	select {
	case o.events <- Event{Kind: EventInvalidated}:
	default:
	}
}

func (o *Orchestrator) forwardPollEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-o.poll.Events():
			if !ok {
				return
			}
			o.handlePollEvent(ev)
		}
	}
}

func (o *Orchestrator) handlePollEvent(ev rdbgxml.Event) {
	switch ev.Kind {
	case rdbgxml.EventTargetStarted:
		t := o.targets.upsert(ev.Target)
		o.emit(Event{Kind: EventThreadStarted, ThreadID: t.ThreadID})
		if o.shouldAutoAttach(ev.Target) {
			go o.attachTarget(context.Background(), ev.Target.ID)
		}
	case rdbgxml.EventTargetQuit:
		if t, ok := o.targets.get(ev.Target.ID); ok {
			o.targets.remove(ev.Target.ID)
			o.emit(Event{Kind: EventThreadExited, ThreadID: t.ThreadID})
		}
	case rdbgxml.EventCallStackFormed:
		o.handleCallStackFormed(ev)
	case rdbgxml.EventExprEvaluated:
		// Already delivered to internal/eval via the polling engine's
		// take-once store; nothing further for the adapter to do.
	}
}

func (o *Orchestrator) handleCallStackFormed(ev rdbgxml.Event) {
	t, ok := o.targets.get(ev.ThreadTargetID)
	if !ok {
		return
	}
	t.Stopped = true
	t.Stack = ev.Stack
	o.Refs.Clear()
	o.emit(Event{Kind: EventStopped, ThreadID: t.ThreadID, Reason: "breakpoint"})
}

func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
	}
}

func (o *Orchestrator) shouldAutoAttach(info rdbgxml.TargetInfo) bool {
	return autoAttachMatches(o.autoAttachAllowed, info.TargetType)
}

func evalConfigFromTiming(t Timing) eval.Config {
	return eval.Config{
		EvalExprRetryDelays:  msToDurations(t.EvalExprRetryDelaysMs),
		VariablesRetryDelays: msToDurations(t.VariablesRequestRetryDelaysMs),
		VarFetchDelay:        msToDuration(t.VarFetchDelayMs),
		VarFetchMaxPolls:     10,
	}
}

func rpollConfigFromTiming(t Timing) rpoll.Config {
	return rpoll.Config{
		FastInterval:          msToDuration(t.PingIntervalMs),
		SlowInterval:          msToDuration(t.PingStoppedIntervalMs),
		TargetsRecoveryPeriod: msToDuration(800),
		TargetMinInterval:     msToDuration(t.PingDbgtgtIntervalMs),
		ImmediateDelays:       msToDurations(t.ImmediatePingDelaysMs),
		DedupWindow:           msToDuration(400),
		ExprDebounce:          msToDuration(150),
	}
}
