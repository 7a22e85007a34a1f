package metadata

import "github.com/google/uuid"

// ModuleKind is the well-known kind of a .bsl module file. propertyId
// is fixed per kind, not per project.
type ModuleKind int

const (
	KindObjectModule ModuleKind = iota
	KindManagerModule
	KindFormModule
	KindCommandModule
	KindRecordSetModule
	KindManagedAppModule
	KindSessionModule
	KindExternalConnectionModule
	KindOrdinaryAppModule
	KindCommonModule
)

func (k ModuleKind) String() string {
	switch k {
	case KindObjectModule:
		return "ObjectModule"
	case KindManagerModule:
		return "ManagerModule"
	case KindFormModule:
		return "FormModule"
	case KindCommandModule:
		return "CommandModule"
	case KindRecordSetModule:
		return "RecordSetModule"
	case KindManagedAppModule:
		return "ManagedApplicationModule"
	case KindSessionModule:
		return "SessionModule"
	case KindExternalConnectionModule:
		return "ExternalConnectionModule"
	case KindOrdinaryAppModule:
		return "OrdinaryApplicationModule"
	case KindCommonModule:
		return "CommonModule"
	default:
		return "Unknown"
	}
}

// Descriptor is the full identity of one source module.
type Descriptor struct {
	Path           string
	ObjectID       uuid.UUID
	PropertyID     uuid.UUID
	ModuleType     ModuleKind
	Extension      string
	ModuleIDString string
}

// Index is the bidirectional path<->descriptor map for one workspace
// root (or one extension within it). It is built once and read-only
// thereafter.
type Index struct {
	Root string

	byPath           map[string]*Descriptor
	byObjectProperty map[objectPropertyKey]*Descriptor
	byModuleIDString map[string]*Descriptor
}

type objectPropertyKey struct {
	ObjectID   uuid.UUID
	PropertyID uuid.UUID
	Extension  string
}

func newIndex(root string) *Index {
	return &Index{
		Root:             root,
		byPath:           map[string]*Descriptor{},
		byObjectProperty: map[objectPropertyKey]*Descriptor{},
		byModuleIDString: map[string]*Descriptor{},
	}
}

func (idx *Index) add(d *Descriptor) {
	idx.byPath[d.Path] = d
	idx.byObjectProperty[objectPropertyKey{d.ObjectID, d.PropertyID, d.Extension}] = d
	if d.ModuleIDString != "" {
		idx.byModuleIDString[d.ModuleIDString] = d
	}
}

// PathByObjectProperty returns the module path for
// (objectId, propertyId, extension), or "" if unknown.
func (idx *Index) PathByObjectProperty(objectID, propertyID uuid.UUID, extension string) (string, bool) {
	d, ok := idx.byObjectProperty[objectPropertyKey{objectID, propertyID, extension}]
	if !ok {
		return "", false
	}
	return d.Path, true
}

// PathByModuleIDString returns the module path for a server-reported
// string identifier, falling back to fuzzy Cyrillic/Latin matching
// when an exact lookup misses.
func (idx *Index) PathByModuleIDString(s, extension string) (string, bool) {
	if d, ok := idx.byModuleIDString[s]; ok && d.Extension == extension {
		return d.Path, true
	}
	if d, ok := idx.byModuleIDString[s]; ok {
		return d.Path, true
	}

	folded := foldModuleIDString(s)
	for k, d := range idx.byModuleIDString {
		if d.Extension != extension {
			continue
		}
		if foldModuleIDString(k) == folded {
			return d.Path, true
		}
	}
	for k, d := range idx.byModuleIDString {
		if foldModuleIDString(k) == folded {
			return d.Path, true
		}
	}
	return "", false
}

// DescriptorByPath returns the full descriptor for a known path.
func (idx *Index) DescriptorByPath(path string) (*Descriptor, bool) {
	d, ok := idx.byPath[path]
	return d, ok
}

// Paths returns every module path known to this index.
func (idx *Index) Paths() []string {
	out := make([]string, 0, len(idx.byPath))
	for p := range idx.byPath {
		out = append(out, p)
	}
	return out
}

// Extensions returns the set of extension names discovered in this
// index, excluding the empty-string main configuration.
func (idx *Index) Extensions() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range idx.byPath {
		if d.Extension == "" || seen[d.Extension] {
			continue
		}
		seen[d.Extension] = true
		out = append(out, d.Extension)
	}
	return out
}
