package metadata

import (
	"io/fs"
	"path/filepath"
)

// extensionRoots lists the directory layouts under which extensions
// (independent overlay configurations) are found, each treated as its
// own configuration with a non-empty extension name.
var extensionRoots = []string{"src/cfe", "cfe"}

// discoverExtensions returns the (name, root) pairs for every
// extension directory found directly under <workspaceRoot>/src/cfe or
// <workspaceRoot>/cfe.
func discoverExtensions(fsys fs.FS, workspaceRoot string) ([]extensionDir, error) {
	var out []extensionDir
	for _, rel := range extensionRoots {
		base := filepath.Join(workspaceRoot, rel)
		entries, err := fs.ReadDir(fsys, toFSPath(base))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			out = append(out, extensionDir{
				Name: e.Name(),
				Root: filepath.Join(base, e.Name()),
			})
		}
	}
	return out, nil
}

type extensionDir struct {
	Name string
	Root string
}

// toFSPath converts an OS path to the slash-separated form io/fs
// expects, and strips any leading slash (fs.FS roots are relative).
func toFSPath(p string) string {
	p = filepath.ToSlash(p)
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if p == "" {
		return "."
	}
	return p
}
