package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanAnnotationsFindsBothMarkers(t *testing.T) {
	src := `Процедура Foo()
КонецПроцедуры

&Вместо("ПриЗаписи")
Процедура Bar()
КонецПроцедуры

&ИзменениеИКонтроль("ПередЗаписью")
Процедура Baz()
КонецПроцедуры
`
	anns, err := scanAnnotations(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, anns, 2)
	assert.Equal(t, markerInstead, anns[0].Kind)
	assert.Equal(t, "ПриЗаписи", anns[0].BaseName)
	assert.Equal(t, 4, anns[0].Line)
	assert.Equal(t, markerChangeGuard, anns[1].Kind)
	assert.Equal(t, "ПередЗаписью", anns[1].BaseName)
}

func TestExtractAnnotationArg(t *testing.T) {
	assert.Equal(t, "ПриЗаписи", extractAnnotationArg(`&Вместо("ПриЗаписи")`))
	assert.Equal(t, "", extractAnnotationArg(`&Вместо`))
}
