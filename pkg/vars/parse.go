package vars

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	DefaultKVSeparator   = "="
	DefaultPairSeparator = ";"
)

// Parse reads text as a JSON object, or failing that as
// "key=value; key=value" pairs.
func Parse(text string) map[string]any {
	return ParseWith(text, DefaultKVSeparator, DefaultPairSeparator)
}

// ParseWith is Parse with custom separators. Malformed JSON never errors; it
// falls through to the pair scan, which keeps whatever pairs it can match.
func ParseWith(text, kvSep, pairSep string) map[string]any {
	text = strings.ReplaceAll(text, "\n", " ")

	if obj, ok := decodeJSON(text); ok {
		if m, isMap := obj.(map[string]any); isMap {
			return m
		}
	}
	return scanPairs(text, kvSep, pairSep)
}

func scanPairs(text, kvSep, pairSep string) map[string]any {
	out := map[string]any{}
	for _, m := range pairPattern(kvSep, pairSep).FindAllStringSubmatch(text, -1) {
		key, raw := m[1], strings.TrimSpace(m[2])
		if nested, ok := decodeJSON(raw); ok && isNested(nested) {
			out[key] = nested
			continue
		}
		out[key] = raw
	}
	return out
}

// isNested accepts objects, arrays and quoted strings. Bare numbers and
// booleans stay literal strings.
func isNested(v any) bool {
	switch v.(type) {
	case map[string]any, []any, string:
		return true
	}
	return false
}

var (
	patternMu    sync.Mutex
	patternCache = map[[2]string]*regexp.Regexp{}
)

func pairPattern(kvSep, pairSep string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()

	key := [2]string{kvSep, pairSep}
	if re, ok := patternCache[key]; ok {
		return re
	}

	// The first value rune may be neither space nor the pair separator, so
	// "a=; b=2" does not read "; b=2" as the value of a.
	first := `\S`
	if r, size := utf8.DecodeRuneInString(pairSep); size == len(pairSep) && r != utf8.RuneError {
		first = `[^\s` + regexp.QuoteMeta(pairSep) + `]`
	}
	re := regexp.MustCompile(`([\p{L}_][\p{L}\p{N}_]*)\s*` + regexp.QuoteMeta(kvSep) +
		`\s*(` + first + `.*?)(?:` + regexp.QuoteMeta(pairSep) + `|$)`)
	patternCache[key] = re
	return re
}

// decodeJSON decodes a single JSON value, turning numbers into int64 when
// integral and float64 otherwise.
func decodeJSON(text string) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	// Trailing non-space garbage after the value is a failure.
	if rest := strings.TrimSpace(text[dec.InputOffset():]); rest != "" {
		return nil, false
	}
	return normalize(v), true
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}
