package rdbgxml

// ParseCallStack extracts the call stack from a getCallStack/
// callStackFormed response body. The server delivers frames root-first;
// per SPEC_FULL.md §3/§8.4 the codec reverses them so index 0 is always
// the innermost (current) frame.
func ParseCallStack(root *Node) []StackFrame {
	cs := root.Get("callStack")
	if cs == nil {
		return nil
	}

	items := cs.All("item")
	frames := make([]StackFrame, len(items))
	for i, it := range items {
		frames[len(items)-1-i] = frameFromNode(it)
	}
	return frames
}

func frameFromNode(n *Node) StackFrame {
	return StackFrame{
		ModuleID:     textOf(n, "moduleID"),
		ModuleIDStr:  DecodeBase64String(textOf(n, "moduleIDStr")),
		Line:         atoiOr(textOf(n, "lineNo"), 0),
		Presentation: DecodeBase64String(textOf(n, "presentation")),
		IsFantom:     textOf(n, "isFantom") == "true",
	}
}
