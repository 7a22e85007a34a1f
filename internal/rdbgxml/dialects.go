package rdbgxml

import (
	"fmt"

	"github.com/google/uuid"
)

// StepAction is one of the actions the "step" command accepts.
type StepAction string

const (
	ActionContinue StepAction = "Continue"
	ActionStep     StepAction = "Step"
	ActionStepIn   StepAction = "StepIn"
	ActionStepOut  StepAction = "StepOut"
)

// ModuleBreakpoints is one moduleBPInfo entry: all requested lines for a
// single (objectID, propertyID[, version]) module.
type ModuleBreakpoints struct {
	ObjectID   uuid.UUID
	PropertyID uuid.UUID
	Version    string
	Lines      []LineBreakpoint
}

type LineBreakpoint struct {
	Line     int
	HitCount int
}

// --- Dialect A: base requests (default namespace debugRDBGRequestResponse) ---

func dialectAOpen(alias string, debuggerID uuid.UUID) *writer {
	w := newWriter()
	w.open("request", "xmlns", "debugRDBGRequestResponse")
	w.elem("infoBaseAlias", alias)
	w.elem("idOfDebuggerUI", debuggerID.String())
	return w
}

func dialectAClose(w *writer) []byte {
	w.close() // request
	return w.bytes()
}

func BuildAttachDebugUI(alias string, debuggerID uuid.UUID, foregroundAbility bool) []byte {
	w := dialectAOpen(alias, debuggerID)
	w.elem("foregroundAbility", boolString(foregroundAbility))
	return dialectAClose(w)
}

func BuildDetachDebugUI(alias string, debuggerID uuid.UUID) []byte {
	return dialectAClose(dialectAOpen(alias, debuggerID))
}

func BuildInitSettings(alias string, debuggerID uuid.UUID) []byte {
	return dialectAClose(dialectAOpen(alias, debuggerID))
}

func BuildGetDbgTargets(alias string, debuggerID uuid.UUID) []byte {
	return dialectAClose(dialectAOpen(alias, debuggerID))
}

func BuildPingDebugUIParams(alias string, debuggerID uuid.UUID) []byte {
	return dialectAClose(dialectAOpen(alias, debuggerID))
}

func BuildSetBreakOnRTE(alias string, debuggerID uuid.UUID, enabled bool) []byte {
	w := dialectAOpen(alias, debuggerID)
	w.elem("breakOnRTE", boolString(enabled))
	return dialectAClose(w)
}

func BuildSetAutoAttachSettings(alias string, debuggerID uuid.UUID, types []string) []byte {
	w := dialectAOpen(alias, debuggerID)
	w.open("autoAttachTypes")
	for _, t := range types {
		w.elem("item", t)
	}
	w.close()
	return dialectAClose(w)
}

// BuildSetBreakpoints emits Dialect A with a bpWorkspace list of
// moduleBPInfo entries. Each entry's bpInfo is a flat repetition of
// line/hitCount pairs -- there is no per-breakpoint wrapper element.
func BuildSetBreakpoints(alias string, debuggerID uuid.UUID, workspace []ModuleBreakpoints) []byte {
	w := dialectAOpen(alias, debuggerID)
	w.open("bpWorkspace")
	for _, m := range workspace {
		w.open("moduleBPInfo")
		w.open("id")
		w.elem("objectID", m.ObjectID.String())
		w.elem("propertyID", m.PropertyID.String())
		if m.Version != "" {
			w.elem("version", m.Version)
		}
		w.close() // id
		w.open("bpInfo")
		for _, l := range m.Lines {
			w.elem("line", fmt.Sprint(l.Line))
			w.elem("hitCount", fmt.Sprint(l.HitCount))
		}
		w.close() // bpInfo
		w.close() // moduleBPInfo
	}
	w.close() // bpWorkspace
	return dialectAClose(w)
}

// --- Dialect B: stepping/stack family (default namespace debugBaseData) ---

// idOfDebuggerUI is written twice in Dialect B bodies: an empirical
// server-protocol quirk where a missing duplicate is rejected with 400.
// See SPEC_FULL.md §9 / Open Question (i).
func dialectBOpen(alias string, debuggerID uuid.UUID) *writer {
	w := newWriter()
	w.open("request", "xmlns", "debugBaseData")
	w.elem("debugRDBGRequestResponse:infoBaseAlias", alias)
	w.elem("debugRDBGRequestResponse:idOfDebuggerUI", debuggerID.String())
	w.elem("idOfDebuggerUI", debuggerID.String())
	return w
}

func dialectBTargetID(w *writer, targetID string) {
	w.open("debugRDBGRequestResponse:targetID")
	w.elem("id", targetID)
	w.close()
}

func dialectBClose(w *writer) []byte {
	w.close() // request
	return w.bytes()
}

func BuildStep(alias string, debuggerID uuid.UUID, targetID string, action StepAction) []byte {
	w := dialectBOpen(alias, debuggerID)
	dialectBTargetID(w, targetID)
	w.elem("debugRDBGRequestResponse:action", string(action))
	return dialectBClose(w)
}

func BuildGetCallStack(alias string, debuggerID uuid.UUID, targetID string) []byte {
	w := dialectBOpen(alias, debuggerID)
	dialectBTargetID(w, targetID)
	return dialectBClose(w)
}

func BuildClearBreakOnNextStatement(alias string, debuggerID uuid.UUID, targetID string) []byte {
	w := dialectBOpen(alias, debuggerID)
	dialectBTargetID(w, targetID)
	return dialectBClose(w)
}

func BuildSetBreakOnNextStatement(alias string, debuggerID uuid.UUID, targetID string) []byte {
	w := dialectBOpen(alias, debuggerID)
	dialectBTargetID(w, targetID)
	return dialectBClose(w)
}

func BuildAttachDetachDbgTargets(alias string, debuggerID uuid.UUID, attach, detach []string) []byte {
	w := dialectBOpen(alias, debuggerID)
	w.open("debugRDBGRequestResponse:attach")
	for _, id := range attach {
		w.open("item")
		w.elem("id", id)
		w.close()
	}
	w.close()
	w.open("debugRDBGRequestResponse:detach")
	for _, id := range detach {
		w.open("item")
		w.elem("id", id)
		w.close()
	}
	w.close()
	return dialectBClose(w)
}

// minPresOptionsMaxTextSize is the minimum maxTextSize (300 KiB) the eval
// variants must advertise in presOptions, per SPEC_FULL.md §4.1.
const minPresOptionsMaxTextSize = 300 * 1024

// EvalInterfaces selects the debugCalculations:interfaces value. The
// container-shape fallbacks in internal/eval reissue a request with
// enum or collection instead of the default context interface to pull
// dictionary rows or value-table row summaries.
type EvalInterfaces string

const (
	InterfacesContext    EvalInterfaces = "context"
	InterfacesEnum       EvalInterfaces = "enum"
	InterfacesCollection EvalInterfaces = "collection"
)

func dialectBEvalCommon(w *writer, expressionResultID uuid.UUID, interfaces EvalInterfaces) {
	w.elem("debugCalculations:expressionResultID", expressionResultID.String())
	w.elem("debugCalculations:interfaces", string(interfaces))
	w.open("debugCalculations:presOptions")
	w.elem("maxTextSize", fmt.Sprint(minPresOptionsMaxTextSize))
	w.close()
}

func BuildEvalExpr(alias string, debuggerID uuid.UUID, targetID string, frameIndex int, expression string, expressionID, expressionResultID uuid.UUID, interfaces EvalInterfaces) []byte {
	w := dialectBOpen(alias, debuggerID)
	dialectBTargetID(w, targetID)
	w.elem("debugRDBGRequestResponse:frameIndex", fmt.Sprint(frameIndex))
	w.elem("debugCalculations:expressionID", expressionID.String())
	w.elem("debugCalculations:expression", expression)
	dialectBEvalCommon(w, expressionResultID, interfaces)
	return dialectBClose(w)
}

func BuildEvalLocalVariables(alias string, debuggerID uuid.UUID, targetID string, frameIndex int, expressionResultID uuid.UUID, extra []string) []byte {
	w := dialectBOpen(alias, debuggerID)
	dialectBTargetID(w, targetID)
	w.elem("debugRDBGRequestResponse:frameIndex", fmt.Sprint(frameIndex))
	dialectBEvalCommon(w, expressionResultID, InterfacesContext)
	if len(extra) > 0 {
		w.open("debugCalculations:additionalExpressions")
		for _, e := range extra {
			w.elem("item", e)
		}
		w.close()
	}
	return dialectBClose(w)
}

// --- Dialect C: runtime and target ping (namespace dbgtgtRemoteRequestResponse) ---

func dialectCOpen(alias, targetIDStr string) *writer {
	w := newWriter()
	w.open("request", "xmlns", "dbgtgtRemoteRequestResponse")
	w.elem("infoBaseAlias", alias)
	w.elem("targetIDStr", targetIDStr)
	return w
}

func dialectCClose(w *writer) []byte {
	w.close()
	return w.bytes()
}

func BuildStartDBGTGT(alias, targetIDStr string) []byte {
	return dialectCClose(dialectCOpen(alias, targetIDStr))
}

func BuildPingDBGTGT(alias, targetIDStr, rteProcVersion string) []byte {
	w := dialectCOpen(alias, targetIDStr)
	if rteProcVersion != "" {
		w.elem("rteProcVersion", rteProcVersion)
	}
	return dialectCClose(w)
}

func BuildRegister(alias, targetIDStr string) []byte {
	return dialectCClose(dialectCOpen(alias, targetIDStr))
}

func BuildEvalExprStartStop(alias, targetIDStr, bpVersion, rteProcVersion, envState string) []byte {
	w := dialectCOpen(alias, targetIDStr)
	if bpVersion != "" {
		w.elem("bpVersion", bpVersion)
	}
	if rteProcVersion != "" {
		w.elem("rteProcVersion", rteProcVersion)
	}
	if envState != "" {
		w.elem("envState", envState)
	}
	return dialectCClose(w)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
