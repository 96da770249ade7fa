package vars

import "strings"

// Literals are the strings read as booleans. Matching ignores case.
type Literals struct {
	True  []string
	False []string
}

// DefaultLiterals match the built-in configuration.
var DefaultLiterals = Literals{
	True:  []string{"yes", "y", "true"},
	False: []string{"no", "n", "false"},
}

// MaybeBool returns true or false when v is a string matching one of the
// literals. Any other value, nil included, is returned unchanged.
func (l Literals) MaybeBool(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	for _, t := range l.True {
		if strings.EqualFold(s, t) {
			return true
		}
	}
	for _, f := range l.False {
		if strings.EqualFold(s, f) {
			return false
		}
	}
	return s
}

// CoerceAll applies MaybeBool to every value of m, returning a new map.
func (l Literals) CoerceAll(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = l.MaybeBool(v)
	}
	return out
}

// MaybeBool coerces with DefaultLiterals.
func MaybeBool(v any) any {
	return DefaultLiterals.MaybeBool(v)
}
