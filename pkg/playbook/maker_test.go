// pkg/playbook/maker_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Temp directories, VariableStore
// PURPOSE: Test strict rendering, helper loading and undefined variables

package playbook_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/playbook"
	"github.com/arthur-debert/isna/pkg/templates"
	"github.com/arthur-debert/isna/pkg/vars"
)

func newMaker(t *testing.T, files map[string]string, base map[string]any) *playbook.Maker {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	reg, err := templates.NewRegistry([]templates.SearchRoot{templates.Dir(dir)})
	require.NoError(t, err)
	return playbook.NewMaker(reg, vars.NewStore(base), vars.DefaultLiterals)
}

func TestMaker_Render(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		base      map[string]any
		overrides map[string]any
		want      string
	}{
		{
			name:   "field_access",
			source: "Hello <@ .name @>",
			base:   map[string]any{"name": "World"},
			want:   "Hello World",
		},
		{
			name:   "bare_identifier",
			source: "Hello <@ name @>",
			base:   map[string]any{"name": "World"},
			want:   "Hello World",
		},
		{
			name:   "mixed_forms",
			source: "<@ alpha @>\n<@ .beta @>\n<@ $.gamma @>",
			base:   map[string]any{"alpha": "0", "beta": "1", "gamma": "2"},
			want:   "0\n1\n2",
		},
		{
			name:      "overrides_shadow_store",
			source:    "<@ .host @>",
			base:      map[string]any{"host": "a"},
			overrides: map[string]any{"host": "b"},
			want:      "b",
		},
		{
			name:   "literal_booleans_coerced",
			source: "<@ if .enabled @>on<@ else @>off<@ end @>",
			base:   map[string]any{"enabled": "false"},
			want:   "off",
		},
		{
			name:   "range_over_nested",
			source: "<@ range .pkgs @><@ . @> <@ end @>",
			base:   map[string]any{"pkgs": []any{"git", "vim"}},
			want:   "git vim ",
		},
		{
			name:   "nested_map",
			source: "<@ .db.name @>",
			base:   map[string]any{"db": map[string]any{"name": "main"}},
			want:   "main",
		},
		{
			name:   "jinja_braces_untouched",
			source: "msg: \"{{ item }}\" <@ .x @>",
			base:   map[string]any{"x": "1"},
			want:   "msg: \"{{ item }}\" 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMaker(t, map[string]string{"t.yml": tt.source}, tt.base)
			got, err := m.Render("t.yml", tt.overrides)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaker_Render_UndefinedNamesFirstSorted(t *testing.T) {
	m := newMaker(t, map[string]string{"t.yml": "<@ .zeta @> <@ .beta @> <@ alpha @>"},
		map[string]any{"alpha": "x"})

	_, err := m.Render("t.yml", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUndefinedVar))
	assert.Equal(t, "beta", errors.GetErrorDetail(err, "variable"))
	assert.Equal(t, []string{"beta", "zeta"}, errors.GetErrorDetail(err, "missing"))
}

func TestMaker_Render_MissingNestedKey(t *testing.T) {
	m := newMaker(t, map[string]string{"t.yml": "<@ .db.port @>"},
		map[string]any{"db": map[string]any{"name": "main"}})

	_, err := m.Render("t.yml", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUndefinedVar))
	assert.Equal(t, "port", errors.GetErrorDetail(err, "variable"))
}

func TestMaker_Render_HelpersLoadedOnDemand(t *testing.T) {
	m := newMaker(t, map[string]string{
		"plain.yml":   "<@ .x @>",
		"helpers.yml": "<@ .x | to_json @> <@ .y | default \"fallback\" @>",
	}, map[string]any{"x": map[string]any{"a": int64(1)}, "y": ""})

	_, err := m.Render("plain.yml", nil)
	require.NoError(t, err)
	assert.False(t, m.HelpersEnabled())

	got, err := m.Render("helpers.yml", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1} fallback`, got)
	assert.True(t, m.HelpersEnabled())
}

func TestMaker_Render_UnknownFunction(t *testing.T) {
	m := newMaker(t, map[string]string{"t.yml": "<@ .x | frobnicate @>"}, map[string]any{"x": "1"})

	_, err := m.Render("t.yml", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateParse))
}

func TestMaker_Render_NotFound(t *testing.T) {
	m := newMaker(t, nil, nil)

	_, err := m.Render("missing.yml", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
}

func TestMaker_UndefinedVariables(t *testing.T) {
	m := newMaker(t, map[string]string{"t.yml": "<@ .a @><@ .b @><@ .c @>"},
		map[string]any{"a": "1"})

	got, err := m.UndefinedVariables("t.yml", map[string]any{"c": "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)

	names, err := m.Variables("t.yml")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
