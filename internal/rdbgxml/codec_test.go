package rdbgxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseArrayNormalization(t *testing.T) {
	body := []byte(`<response><result><item>a</item></result></response>`)
	root, err := ParseResponse(body)
	require.NoError(t, err)

	result := root.Get("result")
	require.NotNil(t, result)
	items := result.All("item")
	assert.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Text)
}

func TestParseResponseStripsNamespacePrefixes(t *testing.T) {
	body := []byte(`<debugBaseData:response xmlns:debugBaseData="urn:x">` +
		`<debugRDBGRequestResponse:idOfDebuggerUI xmlns:debugRDBGRequestResponse="urn:y">abc</debugRDBGRequestResponse:idOfDebuggerUI>` +
		`</debugBaseData:response>`)
	root, err := ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "response", root.Name)
	assert.Equal(t, "abc", textOf(root, "idOfDebuggerUI"))
}

func TestParseCallStackReversesOrder(t *testing.T) {
	body := []byte(`<response><callStack>` +
		`<item><presentation>cm9vdA==</presentation><lineNo>1</lineNo></item>` +
		`<item><presentation>bWlk</presentation><lineNo>2</lineNo></item>` +
		`<item><presentation>bGVhZg==</presentation><lineNo>3</lineNo></item>` +
		`</callStack></response>`)
	root, err := ParseResponse(body)
	require.NoError(t, err)

	frames := ParseCallStack(root)
	require.Len(t, frames, 3)
	assert.Equal(t, "leaf", frames[0].Presentation)
	assert.Equal(t, "mid", frames[1].Presentation)
	assert.Equal(t, "root", frames[2].Presentation)
}

func TestParseEventsAllKinds(t *testing.T) {
	body := []byte(`<response>` +
		`<targetStarted><id>t1</id></targetStarted>` +
		`<targetQuit><id>t2</id></targetQuit>` +
		`<callStackFormed><targetID>t1</targetID><callStack></callStack></callStackFormed>` +
		`<exprEvaluated><expressionResultID>e1</expressionResultID><result>5</result></exprEvaluated>` +
		`</response>`)
	root, err := ParseResponse(body)
	require.NoError(t, err)

	events := ParseEvents(root)
	require.Len(t, events, 4)
	assert.Equal(t, EventTargetStarted, events[0].Kind)
	assert.Equal(t, "t1", events[0].Target.ID)
	assert.Equal(t, EventTargetQuit, events[1].Kind)
	assert.Equal(t, EventCallStackFormed, events[2].Kind)
	assert.Equal(t, "t1", events[2].ThreadTargetID)
	assert.Equal(t, EventExprEvaluated, events[3].Kind)
	assert.Equal(t, "e1", events[3].ExpressionResultID)
	assert.Equal(t, "5", events[3].Value.Display)
}

func TestEncodeTranscodesCharset(t *testing.T) {
	out, err := Encode("<a>привет</a>", CharsetWindows1251)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "привет")
}

func TestEscapeTextAndAttr(t *testing.T) {
	assert.Equal(t, "a&lt;b&amp;c", EscapeText("a<b&c"))
	assert.Equal(t, "a&quot;b", EscapeAttr(`a"b`))
}
