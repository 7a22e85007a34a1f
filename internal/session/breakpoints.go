package session

import (
	"github.com/rdbg-bridge/rdbg-dap/internal/metadata"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

// sourceBreakpoints is the union of every line breakpoint currently
// requested across all sources in this session, keyed by module path.
// setBreakpoints always replaces one source's entries and then
// recomputes the full bpWorkspace from the whole map -- the RDBG
// protocol has no per-source incremental form.
type sourceBreakpoints struct {
	byPath map[string][]rdbgxml.LineBreakpoint
}

func newSourceBreakpoints() *sourceBreakpoints {
	return &sourceBreakpoints{byPath: map[string][]rdbgxml.LineBreakpoint{}}
}

// SetForSource replaces the breakpoint list for one source path.
func (b *sourceBreakpoints) SetForSource(path string, lines []rdbgxml.LineBreakpoint) {
	if len(lines) == 0 {
		delete(b.byPath, path)
		return
	}
	b.byPath[path] = lines
}

// Workspace rebuilds the full bpWorkspace for setBreakpoints, resolving
// each known path (main configuration and every extension) to its
// (objectID, propertyID) pair via the metadata index. A path that no
// longer resolves (stale source, unloaded extension) is silently
// dropped -- the server has nothing meaningful to register it against.
func (b *sourceBreakpoints) Workspace(idx *metadata.Index) []rdbgxml.ModuleBreakpoints {
	var workspace []rdbgxml.ModuleBreakpoints
	for path, lines := range b.byPath {
		d, ok := idx.DescriptorByPath(path)
		if !ok {
			continue
		}
		workspace = append(workspace, rdbgxml.ModuleBreakpoints{
			ObjectID:   d.ObjectID,
			PropertyID: d.PropertyID,
			Version:    extensionVersion(d.Extension),
			Lines:      lines,
		})
	}
	return workspace
}

// extensionVersion is a placeholder hook: the server distinguishes
// extension module revisions by a version string this bridge does not
// yet track per-extension, so the main configuration and every
// extension currently share an empty version.
func extensionVersion(extension string) string {
	return ""
}
