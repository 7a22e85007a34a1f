package rdbgdap

import (
	"context"
	"testing"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dapserver "github.com/rdbg-bridge/rdbg-dap/dap"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/rdbg-bridge/rdbg-dap/internal/session"
)

// stubContext is a minimal dapserver.Context usable from tests that
// never dispatch background work.
type stubContext struct {
	context.Context
}

func (stubContext) C() chan<- dap.Message                   { return nil }
func (stubContext) Go(f func(c dapserver.Context)) bool { return false }

func TestInitializeAdvertisesCapabilitiesAndUnblocksStart(t *testing.T) {
	a := New()
	resp := &dap.InitializeResponse{}

	err := a.initialize(stubContext{context.Background()}, &dap.InitializeRequest{}, resp)
	require.NoError(t, err)

	assert.True(t, resp.Body.SupportsConfigurationDoneRequest)
	assert.True(t, resp.Body.SupportsConditionalBreakpoints)
	assert.True(t, resp.Body.SupportsLogPoints)
	assert.True(t, resp.Body.SupportsEvaluateForHovers)
	assert.True(t, resp.Body.SupportsExceptionFilterOptions)
	assert.True(t, resp.Body.SupportsInvalidatedEvent)

	select {
	case <-a.initialized:
	default:
		t.Fatal("expected initialized channel to be closed")
	}
}

func TestOrchestratorErrorsBeforeLaunch(t *testing.T) {
	a := New()
	_, err := a.orchestrator()
	assert.Error(t, err)
}

func TestSetExceptionBreakpointsAcknowledgesWithoutOrchestrator(t *testing.T) {
	a := New()
	err := a.setExceptionBreakpoints(stubContext{context.Background()}, &dap.SetExceptionBreakpointsRequest{}, &dap.SetExceptionBreakpointsResponse{})
	assert.NoError(t, err)
}

func TestThreadsReportsPlaceholderBeforeLaunch(t *testing.T) {
	a := New()
	resp := &dap.ThreadsResponse{}
	err := a.threads(stubContext{context.Background()}, &dap.ThreadsRequest{}, resp)
	require.NoError(t, err)
	require.Len(t, resp.Body.Threads, 1)
	assert.Equal(t, "Main", resp.Body.Threads[0].Name)
}

func TestToDAPVariableMarksExpandableChildrenWithAFreshHandle(t *testing.T) {
	a := New()
	orch := session.New(session.Config{Timing: session.DefaultTiming()}, nil, "MyBase", nil, nil)

	leaf := rdbgxml.EvalChild{Name: "Count", Value: rdbgxml.EvalValue{Display: "3", TypeName: "Number"}}
	v := a.toDAPVariable(orch, leaf, 1, 0, "")
	assert.Equal(t, 0, v.VariablesReference)

	size := 5
	expandable := rdbgxml.EvalChild{Name: "Items", Value: rdbgxml.EvalValue{Display: "Array", Expandable: true, CollectionSize: &size}}
	v2 := a.toDAPVariable(orch, expandable, 1, 0, "Self")
	assert.NotZero(t, v2.VariablesReference)
	assert.Equal(t, 5, v2.IndexedVariables)

	entry, ok := orch.Refs.Variable(v2.VariablesReference)
	require.True(t, ok)
	assert.Equal(t, "Self.Items", entry.Path)
}
