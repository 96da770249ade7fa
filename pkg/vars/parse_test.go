// pkg/vars/parse_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test the JSON and key=value text formats

package vars_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/isna/pkg/vars"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "json_object",
			in:   `{"a":1,"b":"x"}`,
			want: map[string]any{"a": int64(1), "b": "x"},
		},
		{
			name: "json_float_and_nested",
			in:   `{"f": 1.5, "l": [1, "two"], "m": {"k": true}}`,
			want: map[string]any{"f": 1.5, "l": []any{int64(1), "two"}, "m": map[string]any{"k": true}},
		},
		{
			name: "empty_json_object",
			in:   `{}`,
			want: map[string]any{},
		},
		{
			name: "pairs_are_strings",
			in:   "a=1; b=two",
			want: map[string]any{"a": "1", "b": "two"},
		},
		{
			name: "last_duplicate_wins",
			in:   "a=1; a=2",
			want: map[string]any{"a": "2"},
		},
		{
			name: "whitespace_and_newlines",
			in:   "  alpha =  0 ;\n beta= 1\n;gamma =2  ",
			want: map[string]any{"alpha": "0", "beta": "1", "gamma": "2"},
		},
		{
			name: "nested_structured_value",
			in:   `hosts=["a","b"]; opts={"x": 1}; name="quoted"`,
			want: map[string]any{
				"hosts": []any{"a", "b"},
				"opts":  map[string]any{"x": int64(1)},
				"name":  "quoted",
			},
		},
		{
			name: "bool_literal_stays_string",
			in:   "flag=true",
			want: map[string]any{"flag": "true"},
		},
		{
			name: "empty_value_does_not_swallow_next_pair",
			in:   "a=; b=2",
			want: map[string]any{"b": "2"},
		},
		{
			name: "value_keeps_inner_equals",
			in:   "expr=x=y",
			want: map[string]any{"expr": "x=y"},
		},
		{
			name: "malformed_json_falls_back",
			in:   `{"a": 1`,
			want: map[string]any{},
		},
		{
			name: "json_array_is_not_a_mapping",
			in:   `[1,2]`,
			want: map[string]any{},
		},
		{
			name: "unicode_keys",
			in:   "clé=valeur",
			want: map[string]any{"clé": "valeur"},
		},
		{
			name: "name_from_stdin",
			in:   "name=World\n",
			want: map[string]any{"name": "World"},
		},
		{
			name: "empty_text",
			in:   "",
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vars.Parse(tt.in))
		})
	}
}

func TestParseWith_CustomSeparators(t *testing.T) {
	got := vars.ParseWith("a:1, b:two", ":", ",")
	assert.Equal(t, map[string]any{"a": "1", "b": "two"}, got)
}
