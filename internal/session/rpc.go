package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgerr"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/rdbg-bridge/rdbg-dap/internal/transport"
)

// send posts a dialect-built request body through the transport
// client and returns the parsed response. Any non-200 status becomes an
// error whose message is the response body (the status code is not
// kept), so callers can test it with rdbgerr.IsOnlyWhileStopped.
func (o *Orchestrator) send(ctx context.Context, action transport.Action, cmd string, body []byte, withSession bool) (*rdbgxml.Node, error) {
	resp, err := o.client.Do(ctx, action, cmd, body, withSession)
	if err != nil {
		if statusErr, ok := err.(*transport.StatusError); ok {
			return nil, errors.New(string(statusErr.Body))
		}
		return nil, errors.Wrapf(err, "rdbg: %s", cmd)
	}
	root, err := rdbgxml.ParseResponse(resp)
	if err != nil {
		return nil, errors.Wrapf(err, "rdbg: parse %s response", cmd)
	}
	return root, nil
}

// --- rpoll.Sender ---

func (o *Orchestrator) PingDebugUIParams(ctx context.Context) ([]byte, error) {
	body := rdbgxml.BuildPingDebugUIParams(o.alias, o.debuggerID)
	return o.client.Do(ctx, transport.ActionRdbg, "pingDebugUIParams", body, true)
}

func (o *Orchestrator) GetDbgTargets(ctx context.Context) ([]byte, error) {
	body := rdbgxml.BuildGetDbgTargets(o.alias, o.debuggerID)
	return o.client.Do(ctx, transport.ActionRdbg, "getDbgTargets", body, true)
}

func (o *Orchestrator) PingTarget(ctx context.Context, targetIDStr, rteProcVersion string) ([]byte, error) {
	body := rdbgxml.BuildPingDBGTGT(o.alias, targetIDStr, rteProcVersion)
	return o.client.Do(ctx, transport.ActionRtgt, "pingDBGTGT", body, false)
}

// --- eval.Sender ---

func (o *Orchestrator) SendEvalExpr(ctx context.Context, targetID string, frameIndex int, expression string, interfaces rdbgxml.EvalInterfaces) (string, rdbgxml.EvalValue, error) {
	exprID := uuid.New()
	resultID := uuid.New()
	body := rdbgxml.BuildEvalExpr(o.alias, o.debuggerID, targetID, frameIndex, expression, exprID, resultID, interfaces)

	root, err := o.send(ctx, transport.ActionRdbg, "evalExpr", body, true)
	if err != nil {
		if rdbgerr.IsOnlyWhileStopped(err.Error()) {
			return resultID.String(), rdbgxml.EvalValue{}, err
		}
		return "", rdbgxml.EvalValue{}, err
	}
	return resultID.String(), rdbgxml.ParseEvalResult(root), nil
}

func (o *Orchestrator) SendEvalLocalVariables(ctx context.Context, targetID string, frameIndex int, extra []string) (string, rdbgxml.EvalValue, map[string]rdbgxml.EvalValue, error) {
	resultID := uuid.New()
	body := rdbgxml.BuildEvalLocalVariables(o.alias, o.debuggerID, targetID, frameIndex, resultID, extra)

	root, err := o.send(ctx, transport.ActionRdbg, "evalLocalVariables", body, true)
	if err != nil {
		if rdbgerr.IsOnlyWhileStopped(err.Error()) {
			return resultID.String(), rdbgxml.EvalValue{}, nil, err
		}
		return "", rdbgxml.EvalValue{}, nil, err
	}
	return resultID.String(), rdbgxml.ParseEvalResult(root), rdbgxml.ParseEvalBatch(root), nil
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func msToDurations(ms []int) []time.Duration {
	out := make([]time.Duration, len(ms))
	for i, v := range ms {
		out[i] = msToDuration(v)
	}
	return out
}
