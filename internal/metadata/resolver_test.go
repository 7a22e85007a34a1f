package metadata

import (
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestFS() (fstest.MapFS, uuid.UUID) {
	objectID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fsys := fstest.MapFS{
		"ws/Documents/Заказ.xml": &fstest.MapFile{
			Data: []byte(`<MetaDataObject Uuid="` + objectID.String() + `"><Document/></MetaDataObject>`),
		},
		"ws/Documents/Заказ/Ext/ObjectModule.bsl": &fstest.MapFile{Data: []byte("// object module\n")},
		"ws/Documents/Заказ/Ext/ManagerModule.bsl": &fstest.MapFile{Data: []byte("// manager module\n")},
		"ws/Documents/Заказ/Forms/ОсновнаяФорма/Ext/Form/Module.bsl": &fstest.MapFile{
			Data: []byte("// form module\n"),
		},
	}
	return fsys, objectID
}

func TestBuildAndReverseLookup(t *testing.T) {
	fsys, objectID := buildTestFS()
	r := NewResolverFS(fsys)

	idx, err := r.Build("ws")
	require.NoError(t, err)

	objModPropID := propertyIDFor(KindObjectModule)
	p, ok := idx.PathByObjectProperty(objectID, objModPropID, "")
	require.True(t, ok)
	assert.Contains(t, p, "ObjectModule.bsl")

	formPropID := propertyIDFor(KindFormModule)
	_, ok = idx.PathByObjectProperty(objectID, formPropID, "")
	assert.True(t, ok)
}

func TestReversibilityForEveryDiscoveredModule(t *testing.T) {
	fsys, _ := buildTestFS()
	r := NewResolverFS(fsys)
	idx, err := r.Build("ws")
	require.NoError(t, err)

	for _, d := range idx.byPath {
		p, ok := idx.PathByObjectProperty(d.ObjectID, d.PropertyID, d.Extension)
		require.True(t, ok)
		assert.Equal(t, d.Path, p)
	}
}

func TestPathByModuleIDStringFuzzyMatch(t *testing.T) {
	fsys, _ := buildTestFS()
	r := NewResolverFS(fsys)
	idx, err := r.Build("ws")
	require.NoError(t, err)

	_, ok := idx.PathByModuleIDString("Document.Заказ.ObjectModule", "")
	assert.True(t, ok)
}

func TestBuildCachesPerRoot(t *testing.T) {
	fsys, _ := buildTestFS()
	r := NewResolverFS(fsys)

	idx1, err := r.Build("ws")
	require.NoError(t, err)
	idx2, err := r.Build("ws")
	require.NoError(t, err)
	assert.Same(t, idx1, idx2)
}
