// Package rdbgdap implements the RDBG-specific debug adapter: it wires
// the generic dap.Server/Handler plumbing to an internal/session.Orchestrator,
// translating DAP requests into orchestrator calls and orchestrator
// events into DAP notifications.
package rdbgdap

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/go-dap"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	dapserver "github.com/rdbg-bridge/rdbg-dap/dap"
	"github.com/rdbg-bridge/rdbg-dap/internal/metadata"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/rdbg-bridge/rdbg-dap/internal/refs"
	"github.com/rdbg-bridge/rdbg-dap/internal/session"
	"github.com/rdbg-bridge/rdbg-dap/internal/transport"
)

// Adapter is the RDBG debug surface's dap.Handler implementation. One
// Adapter serves one DAP connection and, once launch/attach succeeds,
// owns exactly one session.Orchestrator.
type Adapter struct {
	srv *dapserver.Server
	eg  *errgroup.Group

	resolver *metadata.Resolver

	mu   sync.Mutex
	orch *session.Orchestrator

	initialized chan struct{}
	started     chan session.LaunchArguments
	configDone  chan struct{}
}

// New builds an Adapter ready to be driven by Start.
func New() *Adapter {
	a := &Adapter{
		resolver:    metadata.NewResolver(),
		initialized: make(chan struct{}),
		started:     make(chan session.LaunchArguments, 1),
		configDone:  make(chan struct{}),
	}
	a.srv = dapserver.NewServer(a.handler())
	return a
}

// Start runs the adapter's server loop over conn until initialize and
// launch/attach have both completed, then returns the parsed launch
// arguments. The server loop itself keeps running in the background;
// callers drive its lifetime via ctx and Stop.
func (a *Adapter) Start(ctx context.Context, conn dapserver.Conn) (session.LaunchArguments, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	a.eg = eg
	eg.Go(func() error {
		return a.srv.Serve(egCtx, conn)
	})

	select {
	case <-a.initialized:
	case <-egCtx.Done():
		return session.LaunchArguments{}, eg.Wait()
	}

	select {
	case args := <-a.started:
		return args, nil
	case <-egCtx.Done():
		return session.LaunchArguments{}, eg.Wait()
	}
}

// Wait blocks until the server loop started by Start exits, returning
// its error (nil on a clean connection close).
func (a *Adapter) Wait() error {
	if a.eg == nil {
		return nil
	}
	return a.eg.Wait()
}

// Stop sends a final terminated event and shuts the server down.
func (a *Adapter) Stop() error {
	a.srv.Go(func(c dapserver.Context) {
		c.C() <- &dap.TerminatedEvent{Event: newEvent("terminated")}
	})
	a.srv.Stop()
	if a.eg != nil {
		return a.eg.Wait()
	}
	return nil
}

func (a *Adapter) handler() dapserver.Handler {
	return dapserver.Handler{
		Initialize:              a.initialize,
		Launch:                  a.launch,
		Attach:                  a.attach,
		SetBreakpoints:          a.setBreakpoints,
		SetExceptionBreakpoints: a.setExceptionBreakpoints,
		ConfigurationDone:       a.configurationDone,
		Disconnect:              a.disconnect,
		Terminate:               a.terminate,
		Continue:                a.continueReq,
		Next:                    a.next,
		StepIn:                  a.stepIn,
		StepOut:                 a.stepOut,
		Threads:                 a.threads,
		StackTrace:              a.stackTrace,
		Scopes:                  a.scopes,
		Variables:               a.variables,
		Evaluate:                a.evaluate,
		EvaluateCollection:      a.evaluateCollection,
	}
}

func (a *Adapter) orchestrator() (*session.Orchestrator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.orch == nil {
		return nil, errors.New("rdbg: no active debug session")
	}
	return a.orch, nil
}

func (a *Adapter) initialize(c dapserver.Context, req *dap.InitializeRequest, resp *dap.InitializeResponse) error {
	resp.Body.SupportsConfigurationDoneRequest = true
	resp.Body.SupportsConditionalBreakpoints = true
	resp.Body.SupportsLogPoints = true
	resp.Body.SupportsEvaluateForHovers = true
	resp.Body.SupportsExceptionFilterOptions = true
	resp.Body.SupportsInvalidatedEvent = true
	close(a.initialized)
	return nil
}

func (a *Adapter) launch(c dapserver.Context, req *dap.LaunchRequest, resp *dap.LaunchResponse) error {
	return a.beginSession(c, req.Arguments, "launch")
}

func (a *Adapter) attach(c dapserver.Context, req *dap.AttachRequest, resp *dap.AttachResponse) error {
	return a.beginSession(c, req.Arguments, "attach")
}

// beginSession parses the launch/attach arguments, resolves the
// metadata index (if a workspace root was given) and builds the
// orchestrator. The attach sequence itself runs in a background task
// started after configurationDone, mirroring how a DAP host expects
// setBreakpoints to land before execution actually begins.
func (a *Adapter) beginSession(c dapserver.Context, raw json.RawMessage, request string) error {
	args, err := session.ParseLaunchArguments(raw)
	if err != nil {
		return errors.Wrap(err, "rdbg: parse launch arguments")
	}
	args.Request = request

	var idx *metadata.Index
	if args.RootProject != "" {
		idx, err = a.resolver.Build(args.RootProject)
		if err != nil {
			return errors.Wrap(err, "rdbg: resolve metadata")
		}
	}

	cfg := session.Config{
		LogProtocol:              true,
		EvalExprStartStopEnabled: true,
		Timing:                   session.DefaultTiming(),
	}
	startedAt := time.Now().Format("20060102-150405")
	client := transport.NewClient(
		transport.Config{Host: args.DebugServerHost, Port: args.DebugServerPort},
		rdbgxml.CharsetWindows1251,
		cfg.LogProtocol,
		startedAt,
	)

	orch := session.New(cfg, client, args.InfoBaseAlias, idx, nil)

	a.mu.Lock()
	a.orch = orch
	a.mu.Unlock()

	launchArgs := *args
	a.started <- launchArgs
	c.Go(func(c dapserver.Context) {
		a.run(c, orch, launchArgs)
	})
	return nil
}

// run drives one attached session end to end: it sends the initialized
// event, waits for configurationDone, runs the attach sequence and
// then forwards every orchestrator event to the DAP client until the
// session ends.
func (a *Adapter) run(c dapserver.Context, orch *session.Orchestrator, args session.LaunchArguments) {
	c.C() <- &dap.InitializedEvent{Event: newEvent("initialized")}

	select {
	case <-a.configDone:
	case <-c.Done():
		return
	}

	if err := orch.Attach(c, args); err != nil {
		c.C() <- &dap.OutputEvent{
			Event: newEvent("output"),
			Body:  dap.OutputEventBody{Category: "stderr", Output: "rdbg: attach failed: " + err.Error() + "\n"},
		}
		c.C() <- &dap.TerminatedEvent{Event: newEvent("terminated")}
		return
	}

	go orch.RunPolling(c)
	a.forwardEvents(c, orch)
}

func (a *Adapter) forwardEvents(c dapserver.Context, orch *session.Orchestrator) {
	for {
		select {
		case <-c.Done():
			return
		case ev, ok := <-orch.Events():
			if !ok {
				return
			}
			a.dispatchEvent(c, ev)
		}
	}
}

func (a *Adapter) dispatchEvent(c dapserver.Context, ev session.Event) {
	switch ev.Kind {
	case session.EventInitialized:
		// The initialized event was already sent when the session
		// started; the orchestrator's own EventInitialized just marks
		// the attach sequence complete for internal bookkeeping.
	case session.EventThreadStarted:
		c.C() <- &dap.ThreadEvent{Event: newEvent("thread"), Body: dap.ThreadEventBody{Reason: "started", ThreadId: ev.ThreadID}}
	case session.EventThreadExited:
		c.C() <- &dap.ThreadEvent{Event: newEvent("thread"), Body: dap.ThreadEventBody{Reason: "exited", ThreadId: ev.ThreadID}}
	case session.EventStopped:
		c.C() <- &dap.StoppedEvent{Event: newEvent("stopped"), Body: dap.StoppedEventBody{Reason: ev.Reason, ThreadId: ev.ThreadID}}
	case session.EventContinued:
		c.C() <- &dap.ContinuedEvent{Event: newEvent("continued"), Body: dap.ContinuedEventBody{ThreadId: ev.ThreadID}}
	case session.EventInvalidated:
		c.C() <- &dap.InvalidatedEvent{Event: newEvent("invalidated"), Body: dap.InvalidatedEventBody{Areas: []string{"variables"}}}
	case session.EventTerminated:
		c.C() <- &dap.TerminatedEvent{Event: newEvent("terminated")}
	case session.EventOutput:
		c.C() <- &dap.OutputEvent{Event: newEvent("output"), Body: dap.OutputEventBody{Category: "console", Output: ev.Message + "\n"}}
	}
}

func (a *Adapter) setBreakpoints(c dapserver.Context, req *dap.SetBreakpointsRequest, resp *dap.SetBreakpointsResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	lines := make([]rdbgxml.LineBreakpoint, 0, len(req.Arguments.Breakpoints))
	for _, bp := range req.Arguments.Breakpoints {
		lines = append(lines, rdbgxml.LineBreakpoint{Line: bp.Line})
	}
	if err := orch.SetBreakpointsForSource(c, req.Arguments.Source.Path, lines); err != nil {
		return err
	}

	resp.Body.Breakpoints = make([]dap.Breakpoint, 0, len(req.Arguments.Breakpoints))
	for _, bp := range req.Arguments.Breakpoints {
		src := req.Arguments.Source
		resp.Body.Breakpoints = append(resp.Body.Breakpoints, dap.Breakpoint{Verified: true, Line: bp.Line, Source: &src})
	}
	return nil
}

// setExceptionBreakpoints acknowledges the request without installing
// any filters: the RDBG protocol has no exception-breakpoint concept.
func (a *Adapter) setExceptionBreakpoints(c dapserver.Context, req *dap.SetExceptionBreakpointsRequest, resp *dap.SetExceptionBreakpointsResponse) error {
	return nil
}

func (a *Adapter) configurationDone(c dapserver.Context, req *dap.ConfigurationDoneRequest, resp *dap.ConfigurationDoneResponse) error {
	close(a.configDone)
	return nil
}

func (a *Adapter) disconnect(c dapserver.Context, req *dap.DisconnectRequest, resp *dap.DisconnectResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return nil
	}
	return orch.Detach(c)
}

func (a *Adapter) terminate(c dapserver.Context, req *dap.TerminateRequest, resp *dap.TerminateResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return nil
	}
	return orch.Detach(c)
}

func (a *Adapter) continueReq(c dapserver.Context, req *dap.ContinueRequest, resp *dap.ContinueResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	return orch.Step(c, req.Arguments.ThreadId, rdbgxml.ActionContinue)
}

func (a *Adapter) next(c dapserver.Context, req *dap.NextRequest, resp *dap.NextResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	return orch.Step(c, req.Arguments.ThreadId, rdbgxml.ActionStep)
}

func (a *Adapter) stepIn(c dapserver.Context, req *dap.StepInRequest, resp *dap.StepInResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	return orch.Step(c, req.Arguments.ThreadId, rdbgxml.ActionStepIn)
}

func (a *Adapter) stepOut(c dapserver.Context, req *dap.StepOutRequest, resp *dap.StepOutResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	return orch.Step(c, req.Arguments.ThreadId, rdbgxml.ActionStepOut)
}

func (a *Adapter) threads(c dapserver.Context, req *dap.ThreadsRequest, resp *dap.ThreadsResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		resp.Body.Threads = []dap.Thread{{Id: 1, Name: "Main"}}
		return nil
	}
	for _, t := range orch.Threads() {
		resp.Body.Threads = append(resp.Body.Threads, dap.Thread{Id: t.ID, Name: t.Name})
	}
	return nil
}

func (a *Adapter) stackTrace(c dapserver.Context, req *dap.StackTraceRequest, resp *dap.StackTraceResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	frames, err := orch.StackTrace(c, req.Arguments.ThreadId)
	if err != nil {
		return err
	}
	for i, f := range frames {
		resp.Body.StackFrames = append(resp.Body.StackFrames, dap.StackFrame{
			Id:     refs.EncodeFrameHandle(req.Arguments.ThreadId, i),
			Name:   f.Presentation,
			Line:   f.Line,
			Column: 1,
		})
	}
	resp.Body.TotalFrames = len(frames)
	return nil
}

func (a *Adapter) scopes(c dapserver.Context, req *dap.ScopesRequest, resp *dap.ScopesResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	threadID, frameIndex := refs.DecodeFrameHandle(req.Arguments.FrameId)
	handle := orch.Refs.NewLocals(threadID, frameIndex)
	resp.Body.Scopes = []dap.Scope{{Name: "Locals", VariablesReference: handle}}
	return nil
}

func (a *Adapter) variables(c dapserver.Context, req *dap.VariablesRequest, resp *dap.VariablesResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	if entry, ok := orch.Refs.Locals(req.Arguments.VariablesReference); ok {
		targetID, ok := orch.TargetID(entry.ThreadID)
		if !ok {
			return errors.Errorf("rdbg: unknown thread %d", entry.ThreadID)
		}
		result, _, err := orch.Eval.EvalLocalVariables(c, targetID, entry.FrameIndex, nil)
		if err != nil {
			return err
		}
		for _, child := range result.Value.Children {
			resp.Body.Variables = append(resp.Body.Variables, a.toDAPVariable(orch, child, entry.ThreadID, entry.FrameIndex, ""))
		}
		return nil
	}

	entry, ok := orch.Refs.Variable(req.Arguments.VariablesReference)
	if !ok {
		return errors.Errorf("rdbg: unknown variables reference %d", req.Arguments.VariablesReference)
	}
	children, err := a.resolveChildren(c, orch, entry, req.Arguments.VariablesReference)
	if err != nil {
		return err
	}
	for _, child := range children {
		resp.Body.Variables = append(resp.Body.Variables, a.toDAPVariable(orch, child, entry.ThreadID, entry.FrameIndex, entry.Path))
	}
	return nil
}

func (a *Adapter) evaluate(c dapserver.Context, req *dap.EvaluateRequest, resp *dap.EvaluateResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	threadID, frameIndex := refs.DecodeFrameHandle(req.Arguments.FrameId)
	targetID, ok := orch.TargetID(threadID)
	if !ok {
		return errors.Errorf("rdbg: unknown thread %d", threadID)
	}

	isWatch := req.Arguments.Context == "watch"
	result, err := orch.Eval.EvalExpr(c, targetID, frameIndex, req.Arguments.Expression, isWatch)
	if err != nil {
		return err
	}

	resp.Body.Result = result.Value.Display
	resp.Body.Type = result.Value.TypeName
	if result.Value.Expandable {
		resp.Body.VariablesReference = orch.Refs.NewVariable(req.Arguments.Expression, threadID, frameIndex)
		if result.Value.CollectionSize != nil {
			resp.Body.IndexedVariables = *result.Value.CollectionSize
		}
	}
	return nil
}

// evaluateCollection pages through the children of a dictionary or
// value-table result a prior evaluate/variables call already expanded
// (or fetches them now, on first page).
func (a *Adapter) evaluateCollection(c dapserver.Context, req *dapserver.EvaluateCollectionRequest, resp *dapserver.EvaluateCollectionResponse) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	entry, ok := orch.Refs.Variable(req.Arguments.VariablesReference)
	if !ok {
		return errors.Errorf("rdbg: unknown variables reference %d", req.Arguments.VariablesReference)
	}
	children, err := a.resolveChildren(c, orch, entry, req.Arguments.VariablesReference)
	if err != nil {
		return err
	}

	resp.Body.Total = len(children)
	start := req.Arguments.Start
	if start < 0 {
		start = 0
	}
	if start > len(children) {
		start = len(children)
	}
	end := len(children)
	if req.Arguments.Count > 0 && start+req.Arguments.Count < end {
		end = start + req.Arguments.Count
	}

	for _, child := range children[start:end] {
		resp.Body.Items = append(resp.Body.Items, a.toDAPVariable(orch, child, entry.ThreadID, entry.FrameIndex, entry.Path))
	}
	return nil
}

// resolveChildren returns entry's children, fetching and caching them
// via evalExpr on first access.
func (a *Adapter) resolveChildren(c dapserver.Context, orch *session.Orchestrator, entry *refs.VariableEntry, handle int) ([]rdbgxml.EvalChild, error) {
	if entry.Children != nil {
		return entry.Children, nil
	}
	targetID, ok := orch.TargetID(entry.ThreadID)
	if !ok {
		return nil, errors.Errorf("rdbg: unknown thread %d", entry.ThreadID)
	}
	result, err := orch.Eval.EvalExpr(c, targetID, entry.FrameIndex, entry.Path, false)
	if err != nil {
		return nil, err
	}
	orch.Refs.CacheChildren(handle, result.Value.Children)
	return result.Value.Children, nil
}

// toDAPVariable builds one dap.Variable, issuing a fresh variables
// handle for expandable children. parentPath composes the
// re-evaluable expression for the child ("" at the locals root, where
// the child's own name is already a complete expression).
func (a *Adapter) toDAPVariable(orch *session.Orchestrator, child rdbgxml.EvalChild, threadID, frameIndex int, parentPath string) dap.Variable {
	path := child.Name
	if parentPath != "" {
		path = parentPath + "." + child.Name
	}

	v := dap.Variable{
		Name:  child.Name,
		Value: child.Value.Display,
		Type:  child.Value.TypeName,
	}
	if child.Value.Expandable {
		v.VariablesReference = orch.Refs.NewVariable(path, threadID, frameIndex)
		if child.Value.CollectionSize != nil {
			v.IndexedVariables = *child.Value.CollectionSize
		}
	}
	return v
}

func newEvent(name string) dap.Event {
	return dap.Event{ProtocolMessage: dap.ProtocolMessage{Type: "event"}, Event: name}
}
