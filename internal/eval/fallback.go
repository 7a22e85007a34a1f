package eval

import (
	"context"
	"strings"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

// temporaryTablesManagerMarkers name the container-shape paths the
// fallback reissue must never recurse into: expanding a temporary
// tables manager's children can itself contain further temp-table
// managers, which would otherwise recurse without bound.
var temporaryTablesManagerMarkers = []string{
	"МенеджерВременныхТаблиц",
	"TemporaryTablesManager",
}

func isTemporaryTablesManagerPath(expression string) bool {
	for _, m := range temporaryTablesManagerMarkers {
		if strings.Contains(expression, m) {
			return true
		}
	}
	return false
}

// applyContainerFallback reissues the evaluation with a different
// interfaces mode when the result declares a container shape that
// needs it: a dictionary type with no children gets the enum
// interface (rows become {key,value} children); a value table whose
// only children are "columns"/"indexes" metadata gets the collection
// interface (rows become row-summary children).
func (e *Engine) applyContainerFallback(ctx context.Context, targetID string, frameIndex int, expression string, v rdbgxml.EvalValue) rdbgxml.EvalValue {
	if isTemporaryTablesManagerPath(expression) {
		return v
	}

	switch {
	case rdbgxml.IsDictionaryType(v.TypeName) && len(v.Children) == 0:
		_, reissued, err := e.sender.SendEvalExpr(ctx, targetID, frameIndex, expression, rdbgxml.InterfacesEnum)
		if err == nil && len(reissued.Children) > 0 {
			v.Children = reissued.Children
		}
	case rdbgxml.IsValueTableType(v.TypeName) && rdbgxml.IsValueTableMetadataOnly(v.Children):
		_, reissued, err := e.sender.SendEvalExpr(ctx, targetID, frameIndex, expression, rdbgxml.InterfacesCollection)
		if err == nil && len(reissued.Children) > 0 {
			v.Children = reissued.Children
		}
	}
	return v
}
