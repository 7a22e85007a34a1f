package eval

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	evalExprCalls int
	evalExprFunc  func(call int, interfaces rdbgxml.EvalInterfaces) (string, rdbgxml.EvalValue, error)
}

func (f *fakeSender) SendEvalExpr(ctx context.Context, targetID string, frameIndex int, expression string, interfaces rdbgxml.EvalInterfaces) (string, rdbgxml.EvalValue, error) {
	f.evalExprCalls++
	return f.evalExprFunc(f.evalExprCalls, interfaces)
}

func (f *fakeSender) SendEvalLocalVariables(ctx context.Context, targetID string, frameIndex int, extra []string) (string, rdbgxml.EvalValue, map[string]rdbgxml.EvalValue, error) {
	return "", rdbgxml.EvalValue{}, nil, nil
}

func TestEvalExprOnlyWhileStoppedReturnsCachedOrEmpty(t *testing.T) {
	sender := &fakeSender{evalExprFunc: func(call int, _ rdbgxml.EvalInterfaces) (string, rdbgxml.EvalValue, error) {
		return "", rdbgxml.EvalValue{}, errors.New("only while stopped")
	}}
	e := NewEngine(sender, nil, Config{})

	res, err := e.EvalExpr(context.Background(), "t1", 0, "x", true)
	require.NoError(t, err)
	assert.Equal(t, StateStoppedOnly, res.State)
	assert.Equal(t, "", res.Value.Display)
}

func TestEvalExprDictionaryFallback(t *testing.T) {
	sender := &fakeSender{evalExprFunc: func(call int, interfaces rdbgxml.EvalInterfaces) (string, rdbgxml.EvalValue, error) {
		if interfaces == rdbgxml.InterfacesContext {
			return "e1", rdbgxml.EvalValue{TypeName: "Соответствие"}, nil
		}
		return "e1", rdbgxml.EvalValue{
			TypeName: "Соответствие",
			Children: []rdbgxml.EvalChild{
				{Name: "k1", Value: rdbgxml.EvalValue{Display: "v1"}},
				{Name: "k2", Value: rdbgxml.EvalValue{Display: "v2"}},
			},
		}, nil
	}}
	e := NewEngine(sender, nil, Config{})

	res, err := e.EvalExpr(context.Background(), "t1", 0, "m", false)
	require.NoError(t, err)
	require.Len(t, res.Value.Children, 2)
	assert.Equal(t, "k1", res.Value.Children[0].Name)
	assert.Equal(t, "v1", res.Value.Children[0].Value.Display)
}

type fakeWaiter struct {
	results map[string]rdbgxml.EvalValue
}

func (f *fakeWaiter) TakeExprResult(id string) (rdbgxml.EvalValue, bool) {
	v, ok := f.results[id]
	if ok {
		delete(f.results, id)
	}
	return v, ok
}

func TestEvalExprEmptyResponseFallsBackToPollingStore(t *testing.T) {
	sender := &fakeSender{evalExprFunc: func(call int, _ rdbgxml.EvalInterfaces) (string, rdbgxml.EvalValue, error) {
		return "e1", rdbgxml.EvalValue{}, nil
	}}
	waiter := &fakeWaiter{results: map[string]rdbgxml.EvalValue{"e1": {Display: "5", TypeName: "Число"}}}
	e := NewEngine(sender, waiter, Config{
		EvalExprRetryDelays: []time.Duration{time.Millisecond},
		VarFetchDelay:       time.Millisecond,
		VarFetchMaxPolls:    4,
	})

	res, err := e.EvalExpr(context.Background(), "t1", 0, "x", false)
	require.NoError(t, err)
	assert.Equal(t, "5", res.Value.Display)
}
