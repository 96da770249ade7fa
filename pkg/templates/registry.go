package templates

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
)

// Registry looks templates up across an ordered search path. Loaded
// templates are cached for the life of the registry.
type Registry struct {
	roots  []SearchRoot
	fss    []afero.Fs
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]*Template
}

// NewRegistry opens every root. An invalid root fails the whole registry.
func NewRegistry(roots []SearchRoot) (*Registry, error) {
	r := &Registry{
		roots:  roots,
		fss:    make([]afero.Fs, 0, len(roots)),
		logger: logging.GetLogger("templates"),
		cache:  map[string]*Template{},
	}
	for _, root := range roots {
		fsys, err := root.open()
		if err != nil {
			return nil, err
		}
		r.fss = append(r.fss, fsys)
	}
	r.logger.Debug().Int("roots", len(roots)).Msg("Template registry ready")
	return r, nil
}

// Roots returns the search path in lookup order.
func (r *Registry) Roots() []SearchRoot {
	return append([]SearchRoot(nil), r.roots...)
}

// List returns every template name ending in one of extensions, relative to
// its root with slash separators, sorted and deduplicated.
func (r *Registry) List(extensions []string) ([]string, error) {
	suffixes := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		suffixes = append(suffixes, ext)
	}

	seen := map[string]bool{}
	for i, fsys := range r.fss {
		err := afero.Walk(fsys, ".", func(p string, info os.FileInfo, err error) error {
			if err != nil {
				if p == "." {
					// A missing directory root simply holds nothing.
					return nil
				}
				return err
			}
			if info.IsDir() {
				return nil
			}
			name := filepath.ToSlash(p)
			for _, s := range suffixes {
				if strings.HasSuffix(name, s) {
					seen[name] = true
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list templates in %s", r.roots[i])
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the template called name from the first root that has it.
func (r *Registry) Load(name string) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.cache[name]; ok {
		return t, nil
	}

	rel, ok := cleanName(name)
	if ok {
		for i, fsys := range r.fss {
			info, err := fsys.Stat(rel)
			if err != nil || info.IsDir() {
				continue
			}
			data, err := afero.ReadFile(fsys, rel)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read template %s", name).
					WithDetail("root", r.roots[i].String())
			}
			t, err := Parse(name, string(data))
			if err != nil {
				return nil, err
			}
			t.Root = r.roots[i]
			r.cache[name] = t
			r.logger.Debug().Str("template", name).Str("root", t.Root.String()).Msg("Loaded template")
			return t, nil
		}
	}

	searched := make([]string, len(r.roots))
	for i, root := range r.roots {
		searched[i] = root.String()
	}
	return nil, errors.Newf(errors.ErrTemplateNotFound, "template %q not found", name).
		WithDetail("template", name).
		WithDetail("searched", strings.Join(searched, ", "))
}

// Locate returns the root that provides name without parsing it.
func (r *Registry) Locate(name string) (SearchRoot, bool) {
	rel, ok := cleanName(name)
	if !ok {
		return SearchRoot{}, false
	}
	for i, fsys := range r.fss {
		if info, err := fsys.Stat(rel); err == nil && !info.IsDir() {
			return r.roots[i], true
		}
	}
	return SearchRoot{}, false
}

// FreeVariables loads name and returns the variables it references.
func (r *Registry) FreeVariables(name string) ([]string, error) {
	t, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return t.FreeVariables(), nil
}

// cleanName turns a template name into a path valid for every root kind.
// Names escaping the root are rejected.
func cleanName(name string) (string, bool) {
	p := path.Clean(filepath.ToSlash(name))
	p = strings.TrimPrefix(p, "/")
	if p == "." || p == "" || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}

// FromArgs splits template arguments into names and extra roots. An
// argument naming an existing file becomes its base name, and the file's
// directory is added as a root, in argument order.
func FromArgs(args []string) ([]string, []SearchRoot) {
	names := make([]string, 0, len(args))
	var roots []SearchRoot
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || info.IsDir() {
			names = append(names, arg)
			continue
		}
		dir := filepath.Dir(arg)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		names = append(names, filepath.Base(arg))
		roots = append(roots, Dir(dir))
	}
	return names, roots
}
