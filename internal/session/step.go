package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/rdbg-bridge/rdbg-dap/internal/transport"
)

// Step drives Continue/Next/StepIn/StepOut for the target owning
// threadID. Every action but Continue first arms
// setBreakOnNextStatement so the server halts again even if the step
// lands past the last known breakpoint.
func (o *Orchestrator) Step(ctx context.Context, threadID int, action rdbgxml.StepAction) error {
	t, ok := o.targets.byThread(threadID)
	if !ok {
		return errors.Errorf("rdbg: unknown thread %d", threadID)
	}

	if action != rdbgxml.ActionContinue {
		if _, err := o.send(ctx, transport.ActionRdbg, "setBreakOnNextStatement",
			rdbgxml.BuildSetBreakOnNextStatement(o.alias, o.debuggerID, t.Info.ID), true); err != nil {
			return err
		}
	}

	if _, err := o.send(ctx, transport.ActionRdbg, "step",
		rdbgxml.BuildStep(o.alias, o.debuggerID, t.Info.ID, action), true); err != nil {
		return err
	}

	t.Stopped = false
	t.Stack = nil
	o.Refs.Clear()
	o.poll.NotifyStep(ctx)

	if o.cfg.EvalExprStartStopEnabled {
		if _, err := o.client.Do(ctx, transport.ActionRtgt, "evalExprStartStop",
			rdbgxml.BuildEvalExprStartStop(o.alias, t.Info.IDStr, "", t.RteProcVersion, "running"), false); err != nil {
			// evalExprStartStop is a best-effort notification channel
			// some runtime versions don't implement; a failure here
			// must never abort the step the DAP client is waiting on.
			_ = err
		}
	}

	o.emit(Event{Kind: EventContinued, ThreadID: threadID})
	return nil
}

// Pause requests a break on the next statement for an already running
// target, without issuing a step.
func (o *Orchestrator) Pause(ctx context.Context, threadID int) error {
	t, ok := o.targets.byThread(threadID)
	if !ok {
		return errors.Errorf("rdbg: unknown thread %d", threadID)
	}
	_, err := o.send(ctx, transport.ActionRdbg, "setBreakOnNextStatement",
		rdbgxml.BuildSetBreakOnNextStatement(o.alias, o.debuggerID, t.Info.ID), true)
	return err
}

// StackTrace returns the cached call stack for a thread, fetching it
// fresh via getCallStack if none has arrived from a poll yet.
func (o *Orchestrator) StackTrace(ctx context.Context, threadID int) ([]rdbgxml.StackFrame, error) {
	t, ok := o.targets.byThread(threadID)
	if !ok {
		return nil, errors.Errorf("rdbg: unknown thread %d", threadID)
	}
	if t.Stack != nil {
		return t.Stack, nil
	}
	root, err := o.send(ctx, transport.ActionRdbg, "getCallStack",
		rdbgxml.BuildGetCallStack(o.alias, o.debuggerID, t.Info.ID), true)
	if err != nil {
		return nil, err
	}
	t.Stack = rdbgxml.ParseCallStack(root)
	return t.Stack, nil
}

// Threads returns every thread the adapter should report, including
// the synthetic placeholder thread while no target is known yet.
func (o *Orchestrator) Threads() []threadInfo {
	return o.targets.threads()
}

// TargetID returns the RDBG target id string backing threadID, used by
// the DAP surface to drive evalExpr/evalLocalVariables calls.
func (o *Orchestrator) TargetID(threadID int) (string, bool) {
	t, ok := o.targets.byThread(threadID)
	if !ok {
		return "", false
	}
	return t.Info.ID, true
}
