package templates

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
)

// RootKind tags a SearchRoot.
type RootKind int

const (
	// DirRoot is a directory on the local filesystem.
	DirRoot RootKind = iota + 1
	// PackageRoot is a folder inside a registered package filesystem.
	PackageRoot
)

// SearchRoot is one place templates are looked up. Build it with Dir or
// Package; the zero value is invalid.
type SearchRoot struct {
	Kind    RootKind
	Path    string
	Package string
	Folder  string
}

// Dir returns a filesystem root.
func Dir(path string) SearchRoot {
	return SearchRoot{Kind: DirRoot, Path: filepath.Clean(path)}
}

// Package returns a package root.
func Package(name, folder string) SearchRoot {
	return SearchRoot{Kind: PackageRoot, Package: name, Folder: folder}
}

func (r SearchRoot) String() string {
	switch r.Kind {
	case DirRoot:
		return r.Path
	case PackageRoot:
		if r.Folder == "" {
			return r.Package + ":"
		}
		return r.Package + ":" + r.Folder
	}
	return fmt.Sprintf("invalid root %#v", r)
}

var (
	packagesMu sync.RWMutex
	packages   = map[string]fs.FS{}
)

// RegisterPackage makes fsys available to Package(name, ...) roots.
func RegisterPackage(name string, fsys fs.FS) {
	packagesMu.Lock()
	defer packagesMu.Unlock()
	packages[name] = fsys
}

// open returns the root as a read-only filesystem.
func (r SearchRoot) open() (afero.Fs, error) {
	switch r.Kind {
	case DirRoot:
		abs, err := filepath.Abs(r.Path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSearchRoot, "cannot resolve template directory %s", r.Path)
		}
		return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil

	case PackageRoot:
		packagesMu.RLock()
		fsys, ok := packages[r.Package]
		packagesMu.RUnlock()
		if !ok {
			return nil, errors.Newf(errors.ErrSearchRoot, "no template package named %q", r.Package)
		}
		if r.Folder != "" && r.Folder != "." {
			sub, err := fs.Sub(fsys, r.Folder)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrSearchRoot, "invalid folder %q in package %q", r.Folder, r.Package)
			}
			fsys = sub
		}
		return afero.FromIOFS{FS: fsys}, nil
	}

	return nil, errors.Newf(errors.ErrSearchRoot, "unknown search root kind %d", r.Kind).
		WithDetail("root", fmt.Sprintf("%#v", r))
}

// ResolveSearchPath puts explicit roots before defaults and drops later
// duplicates.
func ResolveSearchPath(explicit, defaults []SearchRoot) []SearchRoot {
	seen := map[SearchRoot]bool{}
	out := make([]SearchRoot, 0, len(explicit)+len(defaults))
	for _, group := range [][]SearchRoot{explicit, defaults} {
		for _, r := range group {
			if seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// RootsFromConfig converts configured template_dirs entries.
func RootsFromConfig(dirs []config.TemplateDir) ([]SearchRoot, error) {
	roots := make([]SearchRoot, 0, len(dirs))
	for i, d := range dirs {
		switch {
		case d.Path != "" && d.Package == "":
			roots = append(roots, Dir(d.Path))
		case d.Package != "" && d.Path == "":
			roots = append(roots, Package(d.Package, d.Folder))
		default:
			return nil, errors.Newf(errors.ErrConfigValid,
				"template_dirs[%d] is neither a path nor a package root", i)
		}
	}
	return roots, nil
}
