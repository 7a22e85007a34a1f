package rdbgxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvalResultScalar(t *testing.T) {
	body := []byte(`<response><result>5</result><typeName>Число</typeName><isExpandable>false</isExpandable></response>`)
	root, err := ParseResponse(body)
	require.NoError(t, err)

	v := ParseEvalResult(root)
	assert.Equal(t, "5", v.Display)
	assert.Equal(t, "Число", v.TypeName)
	assert.False(t, v.Expandable)
	assert.Nil(t, v.CollectionSize)
}

func TestParseEvalResultChildren(t *testing.T) {
	body := []byte(`<response><typeName>Структура</typeName><isExpandable>true</isExpandable>` +
		`<children><item><name>a</name><result>1</result></item><item><name>b</name><result>2</result></item></children>` +
		`</response>`)
	root, err := ParseResponse(body)
	require.NoError(t, err)

	v := ParseEvalResult(root)
	require.Len(t, v.Children, 2)
	assert.Equal(t, "a", v.Children[0].Name)
	assert.Equal(t, "1", v.Children[0].Value.Display)
}

func TestValueTableMetadataOnlyDetection(t *testing.T) {
	assert.True(t, IsValueTableMetadataOnly([]EvalChild{{Name: "columns"}, {Name: "indexes"}}))
	assert.False(t, IsValueTableMetadataOnly([]EvalChild{{Name: "columns"}}))
	assert.False(t, IsValueTableMetadataOnly([]EvalChild{{Name: "row1"}, {Name: "row2"}}))
}

func TestDictionaryAndValueTableTypeDetection(t *testing.T) {
	assert.True(t, IsDictionaryType("Соответствие"))
	assert.False(t, IsDictionaryType("Число"))
	assert.True(t, IsValueTableType("ТаблицаЗначений"))
}

func TestDictionaryChildrenFromRows(t *testing.T) {
	rows := []*Node{
		{Name: "item", Children: []*Node{{Name: "Ключ", Text: "k1"}, {Name: "Значение", Text: "v1"}}},
		{Name: "item", Children: []*Node{{Name: "Ключ", Text: "k2"}, {Name: "Значение", Text: "v2"}}},
	}
	children := DictionaryChildrenFromRows(rows)
	require.Len(t, children, 2)
	assert.Equal(t, "k1", children[0].Name)
	assert.Equal(t, "v1", children[0].Value.Display)
	assert.Equal(t, "k2", children[1].Name)
}
