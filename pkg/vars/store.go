package vars

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/isna/pkg/logging"
)

// Store layers session values (resolved this run) over base values (given
// on the command line). Neither layer is exposed; callers read through Get,
// UndefinedFor and Merged and write through Record.
type Store struct {
	base    map[string]any
	session map[string]any
	logger  zerolog.Logger
}

// NewStore copies base so later changes by the caller do not leak in.
func NewStore(base map[string]any) *Store {
	b := make(map[string]any, len(base))
	for k, v := range base {
		b[k] = v
	}
	return &Store{
		base:    b,
		session: map[string]any{},
		logger:  logging.GetLogger("vars.store"),
	}
}

// Get looks in the session layer, then the base.
func (s *Store) Get(name string) (any, bool) {
	if v, ok := s.session[name]; ok {
		return v, true
	}
	v, ok := s.base[name]
	return v, ok
}

// Record stores a resolved value in the session layer.
func (s *Store) Record(name string, value any) {
	s.logger.Trace().Str("name", name).Msg("Recorded session value")
	s.session[name] = value
}

// UndefinedFor returns the names, sorted, that neither extra nor the store
// knows.
func (s *Store) UndefinedFor(names []string, extra map[string]any) []string {
	seen := map[string]bool{}
	var missing []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := extra[name]; ok {
			continue
		}
		if _, ok := s.Get(name); ok {
			continue
		}
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

// Merged builds the mapping for one render: overrides shadow the session,
// which shadows the base. When names is nil every known key is included;
// otherwise only the listed names that have a value. The store is not
// modified.
func (s *Store) Merged(names []string, overrides map[string]any) map[string]any {
	out := map[string]any{}
	lookup := func(name string) (any, bool) {
		if v, ok := overrides[name]; ok {
			return v, true
		}
		return s.Get(name)
	}

	if names == nil {
		for k, v := range s.base {
			out[k] = v
		}
		for k, v := range s.session {
			out[k] = v
		}
		for k, v := range overrides {
			out[k] = v
		}
		return out
	}

	for _, name := range names {
		if v, ok := lookup(name); ok {
			out[name] = v
		}
	}
	return out
}
