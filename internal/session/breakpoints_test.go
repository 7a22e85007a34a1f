package session

import (
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdbg-bridge/rdbg-dap/internal/metadata"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

func buildTestIndex(t *testing.T) (*metadata.Index, string) {
	t.Helper()
	objectID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fsys := fstest.MapFS{
		"ws/Documents/Заказ.xml": &fstest.MapFile{
			Data: []byte(`<MetaDataObject Uuid="` + objectID.String() + `"><Document/></MetaDataObject>`),
		},
		"ws/Documents/Заказ/Ext/ObjectModule.bsl": &fstest.MapFile{Data: []byte("// object module\n")},
	}
	r := metadata.NewResolverFS(fsys)
	idx, err := r.Build("ws")
	require.NoError(t, err)

	paths := idx.Paths()
	require.NotEmpty(t, paths)
	return idx, paths[0]
}

func TestSourceBreakpointsWorkspaceResolvesKnownPath(t *testing.T) {
	idx, path := buildTestIndex(t)
	require.NotEmpty(t, path)

	b := newSourceBreakpoints()
	b.SetForSource(path, []rdbgxml.LineBreakpoint{{Line: 10, HitCount: 0}})

	ws := b.Workspace(idx)
	require.Len(t, ws, 1)
	assert.Equal(t, 10, ws[0].Lines[0].Line)
}

func TestSourceBreakpointsWorkspaceDropsUnresolvedPath(t *testing.T) {
	idx, _ := buildTestIndex(t)
	b := newSourceBreakpoints()
	b.SetForSource("no/such/path.bsl", []rdbgxml.LineBreakpoint{{Line: 1}})

	assert.Empty(t, b.Workspace(idx))
}

func TestSourceBreakpointsSetForSourceClearsOnEmpty(t *testing.T) {
	b := newSourceBreakpoints()
	b.SetForSource("a.bsl", []rdbgxml.LineBreakpoint{{Line: 1}})
	b.SetForSource("a.bsl", nil)
	assert.Empty(t, b.byPath)
}
