package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgerr"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/rdbg-bridge/rdbg-dap/internal/transport"
)

const (
	targetDiscoveryPollInterval = 150 * time.Millisecond
	targetDiscoveryTimeout      = 15 * time.Second
	postAttachSettle            = 500 * time.Millisecond
	postInitSettle              = 300 * time.Millisecond
)

// Attach runs the full attach/launch sequence: probe the server,
// register this debugger UI, push settings, discover targets (waiting
// for the launched runtime to register for "launch" requests), attach
// each discovered target and resubmit the breakpoint union. The polling
// loop is not started here; callers start it with RunPolling once
// Attach returns.
func (o *Orchestrator) Attach(ctx context.Context, args LaunchArguments) error {
	o.autoAttachAllowed = ExpandAutoAttachTypes(args.AutoAttachTypes)

	if err := o.probe(ctx); err != nil {
		return errors.Wrap(err, "rdbg: server not reachable")
	}
	if dir := o.client.ProtocolLogDir(); dir != "" {
		o.emit(Event{Kind: EventOutput, Message: "rdbg: protocol log directory: " + dir})
	}

	reason, err := o.attachDebugUI(ctx)
	if err != nil {
		return errors.Wrap(err, "rdbg: attachDebugUI")
	}
	switch reason {
	case rdbgerr.AttachRegistered:
	case rdbgerr.AttachCredentialsRequired:
		return errors.New("rdbg: server requires credentials")
	case rdbgerr.AttachInfoBaseInDebug:
		return errors.New("rdbg: info base is already being debugged")
	default:
		return errors.Errorf("rdbg: attachDebugUI failed (%s)", reason)
	}

	if _, err := o.send(ctx, transport.ActionRdbg, "initSettings", rdbgxml.BuildInitSettings(o.alias, o.debuggerID), true); err != nil {
		return errors.Wrap(err, "rdbg: initSettings")
	}

	if len(args.AutoAttachTypes) > 0 {
		body := rdbgxml.BuildSetAutoAttachSettings(o.alias, o.debuggerID, args.AutoAttachTypes)
		if _, err := o.send(ctx, transport.ActionRdbg, "setAutoAttachSettings", body, true); err != nil {
			return errors.Wrap(err, "rdbg: setAutoAttachSettings")
		}
	}

	if err := sleep(ctx, postAttachSettle); err != nil {
		return err
	}
	if _, err := o.PingDebugUIParams(ctx); err != nil {
		return errors.Wrap(err, "rdbg: post-attach ping")
	}
	if err := sleep(ctx, postInitSettle); err != nil {
		return err
	}

	for i := 0; i < 2; i++ {
		if found, err := o.pollOnce(ctx); err != nil {
			return err
		} else if found {
			break
		}
	}

	if args.Request == "launch" {
		if err := o.launcher.Launch(ctx, args); err != nil {
			return errors.Wrap(err, "rdbg: launch runtime")
		}
	}

	if err := o.waitForTargets(ctx); err != nil {
		return err
	}

	for _, id := range o.targets.IDs() {
		if err := o.attachTarget(ctx, id); err != nil {
			return errors.Wrapf(err, "rdbg: attach target %s", id)
		}
	}

	if o.idx != nil {
		if err := o.pushBreakpoints(ctx); err != nil {
			return errors.Wrap(err, "rdbg: resubmit breakpoints")
		}
	}

	o.emit(Event{Kind: EventInitialized})
	return nil
}

func (o *Orchestrator) probe(ctx context.Context) error {
	_, err := o.client.Do(ctx, transport.ActionRdbgTest, "rdbgTest", []byte{}, false)
	return err
}

func (o *Orchestrator) attachDebugUI(ctx context.Context) (rdbgerr.AttachReason, error) {
	body := rdbgxml.BuildAttachDebugUI(o.alias, o.debuggerID, true)
	root, err := o.send(ctx, transport.ActionRdbg, "attachDebugUI", body, false)
	if err != nil {
		return rdbgerr.AttachUnknown, err
	}
	o.client.SetSessionID(o.debuggerID.String())
	return rdbgerr.ClassifyAttachResult(rdbgxml.ParseAttachResult(root)), nil
}

// pollOnce issues one getDbgTargets and registers every discovered
// target. It reports whether at least one target was found.
func (o *Orchestrator) pollOnce(ctx context.Context) (bool, error) {
	root, err := o.send(ctx, transport.ActionRdbg, "getDbgTargets", rdbgxml.BuildGetDbgTargets(o.alias, o.debuggerID), true)
	if err != nil {
		return false, err
	}
	found := rdbgxml.ParseTargets(root)
	for _, t := range found {
		o.targets.upsert(t)
	}
	return len(found) > 0, nil
}

func (o *Orchestrator) waitForTargets(ctx context.Context) error {
	deadline := time.Now().Add(targetDiscoveryTimeout)
	for {
		if o.targets.Count() > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("rdbg: timed out waiting for a debug target to register")
		}
		if err := sleep(ctx, targetDiscoveryPollInterval); err != nil {
			return err
		}
		if _, err := o.pollOnce(ctx); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) attachTarget(ctx context.Context, id string) error {
	t, ok := o.targets.get(id)
	if !ok {
		return errors.Errorf("rdbg: unknown target %s", id)
	}

	if _, err := o.send(ctx, transport.ActionRdbg, "clearBreakOnNextStatement",
		rdbgxml.BuildClearBreakOnNextStatement(o.alias, o.debuggerID, id), true); err != nil {
		return err
	}
	if _, err := o.send(ctx, transport.ActionRdbg, "attachDetachDbgTargets",
		rdbgxml.BuildAttachDetachDbgTargets(o.alias, o.debuggerID, []string{id}, nil), true); err != nil {
		return err
	}
	if _, err := o.client.Do(ctx, transport.ActionRtgt, "startDBGTGT",
		rdbgxml.BuildStartDBGTGT(o.alias, t.Info.IDStr), false); err != nil {
		return err
	}
	if o.shouldAutoAttach(t.Info) {
		if _, err := o.client.Do(ctx, transport.ActionRtgt, "register",
			rdbgxml.BuildRegister(o.alias, t.Info.IDStr), false); err != nil {
			return err
		}
	}

	t.Attached = true
	return nil
}

func (o *Orchestrator) pushBreakpoints(ctx context.Context) error {
	workspace := o.bps.Workspace(o.idx)
	body := rdbgxml.BuildSetBreakpoints(o.alias, o.debuggerID, workspace)
	_, err := o.send(ctx, transport.ActionRdbg, "setBreakpoints", body, true)
	return err
}

// SetBreakpointsForSource replaces one source's breakpoint list and
// resubmits the full union to the server.
func (o *Orchestrator) SetBreakpointsForSource(ctx context.Context, path string, lines []rdbgxml.LineBreakpoint) error {
	o.bps.SetForSource(path, lines)
	if o.idx == nil {
		return nil
	}
	return o.pushBreakpoints(ctx)
}

// Detach tears down the session: detaches every attached target and
// notifies the server.
func (o *Orchestrator) Detach(ctx context.Context) error {
	var detach []string
	for _, id := range o.targets.IDs() {
		detach = append(detach, id)
	}
	if len(detach) > 0 {
		_, _ = o.send(ctx, transport.ActionRdbg, "attachDetachDbgTargets",
			rdbgxml.BuildAttachDetachDbgTargets(o.alias, o.debuggerID, nil, detach), true)
	}
	_, err := o.send(ctx, transport.ActionRdbg, "detachDebugUI", rdbgxml.BuildDetachDebugUI(o.alias, o.debuggerID), true)
	o.Eval.ClearCache()
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
