package rdbgxml

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildAttachDebugUIIsDialectA(t *testing.T) {
	id := uuid.New()
	body := string(BuildAttachDebugUI("MyBase", id, true))
	assert.Contains(t, body, `xmlns="debugRDBGRequestResponse"`)
	assert.Contains(t, body, "<infoBaseAlias>MyBase</infoBaseAlias>")
	assert.Contains(t, body, "<idOfDebuggerUI>"+id.String()+"</idOfDebuggerUI>")
	assert.Contains(t, body, "<foregroundAbility>true</foregroundAbility>")
}

func TestBuildStepDuplicatesIdOfDebuggerUI(t *testing.T) {
	id := uuid.New()
	body := string(BuildStep("MyBase", id, "t1", ActionStepIn))
	assert.Equal(t, 2, strings.Count(body, id.String()))
	assert.Contains(t, body, `xmlns="debugBaseData"`)
	assert.Contains(t, body, "debugRDBGRequestResponse:idOfDebuggerUI")
	assert.Contains(t, body, "<idOfDebuggerUI>"+id.String()+"</idOfDebuggerUI>")
	assert.Contains(t, body, "debugRDBGRequestResponse:action")
	assert.Contains(t, body, "StepIn")
}

func TestBuildEvalExprCarriesCalculationsNamespaceElements(t *testing.T) {
	debuggerID := uuid.New()
	exprID := uuid.New()
	resultID := uuid.New()
	body := string(BuildEvalExpr("MyBase", debuggerID, "t1", 0, "x+1", exprID, resultID, InterfacesContext))
	assert.Contains(t, body, "debugCalculations:expressionID")
	assert.Contains(t, body, exprID.String())
	assert.Contains(t, body, "debugCalculations:expressionResultID")
	assert.Contains(t, body, resultID.String())
	assert.Contains(t, body, "<debugCalculations:expression>x+1</debugCalculations:expression>")
	assert.Contains(t, body, "<maxTextSize>307200</maxTextSize>")
}

func TestBuildSetBreakpointsFlatBpInfo(t *testing.T) {
	objectID := uuid.New()
	propertyID := uuid.New()
	body := string(BuildSetBreakpoints("MyBase", uuid.New(), []ModuleBreakpoints{
		{
			ObjectID:   objectID,
			PropertyID: propertyID,
			Lines:      []LineBreakpoint{{Line: 10, HitCount: 0}, {Line: 20, HitCount: 1}},
		},
	}))
	assert.Contains(t, body, "<bpInfo><line>10</line><hitCount>0</hitCount><line>20</line><hitCount>1</hitCount></bpInfo>")
	assert.NotContains(t, body, "<breakpoint>")
}

func TestBuildPingDBGTGTIsDialectC(t *testing.T) {
	body := string(BuildPingDBGTGT("MyBase", "t1str", "v1"))
	assert.Contains(t, body, `xmlns="dbgtgtRemoteRequestResponse"`)
	assert.Contains(t, body, "<targetIDStr>t1str</targetIDStr>")
	assert.Contains(t, body, "<rteProcVersion>v1</rteProcVersion>")
}
