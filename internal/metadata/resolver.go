package metadata

import (
	encxml "encoding/xml"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// typeDir names one well-known typed subdirectory of a configuration
// and the Russian type name used to build moduleIdString values.
type typeDir struct {
	Dir          string
	Localized    string
	HasObjModule bool // Ext/ObjectModule.bsl, Ext/ManagerModule.bsl
	HasRecordSet bool // Ext/RecordSetModule.bsl, Ext/ManagerModule.bsl
	HasModule    bool // Ext/Module.bsl only (CommonModules)
}

var typeDirs = []typeDir{
	{Dir: "Catalogs", Localized: "Справочник", HasObjModule: true},
	{Dir: "Documents", Localized: "Документ", HasObjModule: true},
	{Dir: "DataProcessors", Localized: "Обработка", HasObjModule: true},
	{Dir: "Reports", Localized: "Отчет", HasObjModule: true},
	{Dir: "InformationRegisters", Localized: "РегистрСведений", HasRecordSet: true},
	{Dir: "CommonModules", Localized: "ОбщийМодуль", HasModule: true},
}

// Resolver builds and caches one Index per workspace root.
type Resolver struct {
	fsys  fs.FS
	cache sync.Map // root string -> *Index
}

// NewResolver creates a Resolver rooted at the OS filesystem.
func NewResolver() *Resolver {
	return &Resolver{fsys: os.DirFS("/")}
}

// NewResolverFS creates a Resolver over an arbitrary fs.FS, for tests.
func NewResolverFS(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys}
}

// Build returns the Index for root, building and caching it on first
// use. Subsequent calls for the same root return the cached Index
// without re-walking the tree.
func (r *Resolver) Build(root string) (*Index, error) {
	if cached, ok := r.cache.Load(root); ok {
		return cached.(*Index), nil
	}

	idx := newIndex(root)
	if err := r.scanConfiguration(idx, root, ""); err != nil {
		return nil, errors.Wrapf(err, "metadata: scan configuration root %s", root)
	}

	exts, err := discoverExtensions(r.fsys, root)
	if err != nil {
		return nil, err
	}
	for _, ext := range exts {
		if err := r.scanConfiguration(idx, ext.Root, ext.Name); err != nil {
			return nil, errors.Wrapf(err, "metadata: scan extension %s", ext.Name)
		}
	}

	actual, _ := r.cache.LoadOrStore(root, idx)
	return actual.(*Index), nil
}

// scanConfiguration walks one configuration tree (the main
// configuration when extension=="", an overlay otherwise) and adds
// every discovered module to idx.
func (r *Resolver) scanConfiguration(idx *Index, root, extension string) error {
	for _, td := range typeDirs {
		objectsRoot := path.Join(toFSPath(root), td.Dir)
		entries, err := fs.ReadDir(r.fsys, objectsRoot)
		if err != nil {
			continue // directory absent is normal; not every configuration has every kind
		}
		for _, e := range entries {
			name := strings.TrimSuffix(e.Name(), ".xml")
			if e.IsDir() {
				if err := r.scanObject(idx, root, td, name, extension); err != nil {
					return err
				}
				continue
			}
			if strings.HasSuffix(e.Name(), ".xml") {
				if err := r.scanObject(idx, root, td, name, extension); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Resolver) scanObject(idx *Index, root string, td typeDir, name, extension string) error {
	objectXML := path.Join(toFSPath(root), td.Dir, name+".xml")
	objectID, err := readRootUUID(r.fsys, objectXML)
	if err != nil {
		return nil // no metadata descriptor at this path; not an object
	}

	extDir := path.Join(toFSPath(root), td.Dir, name, "Ext")

	switch {
	case td.HasObjModule:
		r.addIfPresent(idx, path.Join(extDir, "ObjectModule.bsl"), objectID, KindObjectModule, extension, td.Localized, name, "МодульОбъекта")
		r.addIfPresent(idx, path.Join(extDir, "ManagerModule.bsl"), objectID, KindManagerModule, extension, td.Localized, name, "МодульМенеджера")
	case td.HasRecordSet:
		r.addIfPresent(idx, path.Join(extDir, "RecordSetModule.bsl"), objectID, KindRecordSetModule, extension, td.Localized, name, "МодульНабораЗаписей")
		r.addIfPresent(idx, path.Join(extDir, "ManagerModule.bsl"), objectID, KindManagerModule, extension, td.Localized, name, "МодульМенеджера")
	case td.HasModule:
		r.addIfPresent(idx, path.Join(extDir, "Module.bsl"), objectID, KindCommonModule, extension, td.Localized, name, "")
	}

	formsRoot := path.Join(toFSPath(root), td.Dir, name, "Forms")
	if forms, err := fs.ReadDir(r.fsys, formsRoot); err == nil {
		for _, f := range forms {
			if !f.IsDir() {
				continue
			}
			p := path.Join(formsRoot, f.Name(), "Ext", "Form", "Module.bsl")
			r.addIfPresent(idx, p, objectID, KindFormModule, extension, td.Localized, name, "Форма."+f.Name()+".МодульФормы")
		}
	}

	commandsRoot := path.Join(toFSPath(root), td.Dir, name, "Commands")
	if cmds, err := fs.ReadDir(r.fsys, commandsRoot); err == nil {
		for _, c := range cmds {
			cname := strings.TrimSuffix(c.Name(), ".xml")
			p := path.Join(commandsRoot, cname, "Ext", "CommandModule.bsl")
			r.addIfPresent(idx, p, objectID, KindCommandModule, extension, td.Localized, name, "Команда."+cname+".МодульКоманды")
		}
	}

	return nil
}

func (r *Resolver) addIfPresent(idx *Index, fsPath string, objectID uuid.UUID, kind ModuleKind, extension, typeLocalized, name, moduleSuffix string) {
	if _, err := fs.Stat(r.fsys, fsPath); err != nil {
		return
	}

	moduleIDString := typeLocalized + "." + name
	if moduleSuffix != "" {
		moduleIDString += "." + moduleSuffix
	}

	idx.add(&Descriptor{
		Path:           filepath.FromSlash(fsPath),
		ObjectID:       objectID,
		PropertyID:     propertyIDFor(kind),
		ModuleType:     kind,
		Extension:      extension,
		ModuleIDString: moduleIDString,
	})
}

// readRootUUID opens path and returns the Uuid attribute of its root
// XML element. 1C metadata object descriptors always carry the
// object's identity this way.
func readRootUUID(fsys fs.FS, p string) (uuid.UUID, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return uuid.Nil, err
	}
	defer f.Close()

	dec := encxml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			return uuid.Nil, err
		}
		start, ok := tok.(encxml.StartElement)
		if !ok {
			continue
		}
		for _, a := range start.Attr {
			if strings.EqualFold(a.Name.Local, "uuid") {
				return uuid.Parse(a.Value)
			}
		}
		return uuid.Nil, errors.Errorf("metadata: root element of %s has no uuid attribute", p)
	}
}
