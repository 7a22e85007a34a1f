package rdbgxml

// EventKind discriminates the tagged Event variant described in
// SPEC_FULL.md §4.5/§9 (Event = TargetStarted | TargetQuit |
// CallStackFormed | ExprEvaluated).
type EventKind int

const (
	EventTargetStarted EventKind = iota
	EventTargetQuit
	EventCallStackFormed
	EventExprEvaluated
)

// Event is a single decoded ping-response event. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Target TargetInfo

	ThreadTargetID string
	Stack          []StackFrame

	// ObjectID/PropertyID are set on a CallStackFormed event recovered
	// from the binary ping payload (they come from the module URI
	// rather than from any stack frame).
	ObjectID   string
	PropertyID string

	ExpressionResultID string
	Value              EvalValue
}

// ParseEvents decodes every event carried by a single ping response
// body. A response may report any combination of targetStarted,
// targetQuit, callStackFormed and exprEvaluated elements.
func ParseEvents(root *Node) []Event {
	var events []Event

	for _, n := range root.All("targetStarted") {
		events = append(events, Event{Kind: EventTargetStarted, Target: targetFromNode(n)})
	}
	for _, n := range root.All("targetQuit") {
		events = append(events, Event{Kind: EventTargetQuit, Target: targetFromNode(n)})
	}
	for _, n := range root.All("callStackFormed") {
		events = append(events, Event{
			Kind:           EventCallStackFormed,
			ThreadTargetID: textOf(n, "targetID"),
			Stack:          ParseCallStack(n),
		})
	}
	for _, n := range root.All("exprEvaluated") {
		events = append(events, Event{
			Kind:               EventExprEvaluated,
			ExpressionResultID: textOf(n, "expressionResultID"),
			Value:              parseEvalValue(n),
		})
	}

	return events
}

// EventFromBinaryStack builds the synthetic CallStackFormed event for
// the binary ping payload fallback (SPEC_FULL.md §4.1, testable
// property #10, scenario S4).
func EventFromBinaryStack(bs *BinaryStack) Event {
	frames := make([]StackFrame, len(bs.Presentations))
	for i, p := range bs.Presentations {
		frames[i] = StackFrame{Presentation: p}
	}
	return Event{
		Kind:       EventCallStackFormed,
		ObjectID:   bs.ObjectID,
		PropertyID: bs.PropertyID,
		Stack:      frames,
	}
}

// EventsFromPingPayload unifies the two decode paths of
// DecodeDataEnvelope into a single event list.
func EventsFromPingPayload(p *PingPayload) []Event {
	if p == nil {
		return nil
	}
	if p.XML != nil {
		return ParseEvents(p.XML)
	}
	if p.Binary != nil {
		return []Event{EventFromBinaryStack(p.Binary)}
	}
	return nil
}
