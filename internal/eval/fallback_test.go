package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTemporaryTablesManagerPath(t *testing.T) {
	assert.True(t, isTemporaryTablesManagerPath("МенеджерВременныхТаблиц.Таблица1"))
	assert.True(t, isTemporaryTablesManagerPath("ctx.TemporaryTablesManager"))
	assert.False(t, isTemporaryTablesManagerPath("ОбычнаяПеременная"))
}
