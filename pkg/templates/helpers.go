package templates

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"regexp"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// builtins are the functions text/template always provides.
var builtins = map[string]bool{
	"and": true, "call": true, "html": true, "index": true, "slice": true,
	"js": true, "len": true, "not": true, "or": true, "print": true,
	"printf": true, "println": true, "urlquery": true,
	"eq": true, "ge": true, "gt": true, "le": true, "lt": true, "ne": true,
}

// IsFunc reports whether name is a builtin or a helper function, and so is
// never read as a template variable.
func IsFunc(name string) bool {
	if builtins[name] {
		return true
	}
	_, ok := helperFuncs[name]
	return ok
}

// HelperFuncs returns the ansible-style filters available to templates.
// Piped values arrive as the last argument: <@ .x | default "y" @>.
func HelperFuncs() template.FuncMap {
	out := make(template.FuncMap, len(helperFuncs))
	for k, v := range helperFuncs {
		out[k] = v
	}
	return out
}

var helperFuncs = template.FuncMap{
	"to_json":       toJSON,
	"to_nice_json":  toNiceJSON,
	"from_json":     fromJSON,
	"to_yaml":       toYAML,
	"to_nice_yaml":  toNiceYAML,
	"from_yaml":     fromYAML,
	"b64encode":     b64encode,
	"b64decode":     b64decode,
	"quote":         shellQuote,
	"basename":      path.Base,
	"dirname":       path.Dir,
	"regex_replace": regexReplace,
	"default":       defaultValue,
	"bool":          toBool,
	"join":          join,
	"lower":         strings.ToLower,
	"upper":         strings.ToUpper,
	"mandatory":     mandatory,
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func toNiceJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	return string(b), err
}

func fromJSON(s string) (any, error) {
	var v any
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}

func toYAML(v any) (string, error) {
	b, err := yaml.Marshal(v)
	return strings.TrimSuffix(string(b), "\n"), err
}

func toNiceYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(4)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func fromYAML(s string) (any, error) {
	var v any
	err := yaml.Unmarshal([]byte(s), &v)
	return v, err
}

func b64encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func b64decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	return string(b), err
}

var shellSafe = regexp.MustCompile(`^[\w@%+=:,./-]+$`)

// shellQuote quotes s for a POSIX shell.
func shellQuote(v any) string {
	s := fmt.Sprint(v)
	if s == "" {
		return "''"
	}
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func regexReplace(pattern, replacement string, v any) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(fmt.Sprint(v), replacement), nil
}

func defaultValue(def any, v ...any) any {
	if len(v) == 0 || isEmpty(v[0]) {
		return def
	}
	return v[0]
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true", "on", "1":
			return true
		}
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 1
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 1
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 1
	}
	return false
}

func join(sep string, list any) (string, error) {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", fmt.Errorf("join expects a list, got %T", list)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	return strings.Join(parts, sep), nil
}

func mandatory(v any) (any, error) {
	if isEmpty(v) {
		return nil, fmt.Errorf("mandatory value is empty")
	}
	return v, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
