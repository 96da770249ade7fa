// pkg/ui/ui_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test renderer selection and the output of each format

package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/types"
	"github.com/arthur-debert/isna/pkg/ui"
)

func TestNewRenderer(t *testing.T) {
	for _, f := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		t.Run(f.String(), func(t *testing.T) {
			r, err := ui.NewRenderer(f, &bytes.Buffer{})
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}

	r, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, ui.FormatText, ui.Resolve(ui.FormatAuto, &bytes.Buffer{}))
	assert.Equal(t, ui.FormatJSON, ui.Resolve(ui.FormatJSON, &bytes.Buffer{}))
}

func TestTextRenderer_DryRun(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(&types.RunResult{
		DryRun:    true,
		Playbooks: []types.RenderedPlaybook{{Template: "site.yml", Document: "- hosts: all"}},
		Hosts:     []string{"localhost"},
		ExtraVars: map[string]any{"ansible_connection": "local", "db_password": "********"},
	}))

	assert.Equal(t, "# site.yml\n- hosts: all\n\n"+
		"hosts: localhost\n"+
		"extra vars:\n"+
		"  ansible_connection: local\n"+
		"  db_password: '********'\n"+
		"dry run: nothing was executed\n", buf.String())
}

func TestTextRenderer_Listings(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
		want   string
	}{
		{
			name: "templates",
			result: &types.ListTemplatesResult{Templates: []types.TemplateInfo{
				{Name: "site.yml", Root: "/srv/t"},
				{Name: "web.yml", Root: "isna:playbook_templates"},
			}},
			want: "site.yml (/srv/t)\nweb.yml (isna:playbook_templates)\n",
		},
		{
			name:   "no_templates",
			result: &types.ListTemplatesResult{Roots: []string{"/a", "/b"}},
			want:   "No templates found in /a, /b\n",
		},
		{
			name: "variables_single",
			result: &types.ListVariablesResult{Templates: []types.TemplateVariables{
				{Template: "a.yml", Variables: []string{"host", "port"}, Undefined: []string{"host"}},
			}},
			want: "host\nport (set)\n",
		},
		{
			name: "variables_many",
			result: &types.ListVariablesResult{Templates: []types.TemplateVariables{
				{Template: "a.yml", Variables: []string{"x"}, Undefined: []string{"x"}},
				{Template: "b.yml", Variables: []string{"y"}, Undefined: []string{"y"}},
			}},
			want: "a.yml:\nx\n\nb.yml:\ny\n",
		},
		{
			name:   "hosts",
			result: &types.ListHostsResult{Hosts: []string{"localhost", "web.local"}},
			want:   "localhost\nweb.local\n",
		},
		{
			name:   "failed_run",
			result: &types.RunResult{ExitCode: 2, Completed: 1, Playbooks: make([]types.RenderedPlaybook, 3)},
			want:   "ansible-playbook exited with status 2 after 1 of 3 playbooks\n",
		},
		{
			name:   "successful_run",
			result: &types.RunResult{Completed: 1, Playbooks: make([]types.RenderedPlaybook, 1)},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			r, err := ui.NewRenderer(ui.FormatText, buf)
			require.NoError(t, err)
			require.NoError(t, r.RenderResult(tt.result))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestJSONRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(&types.ListHostsResult{Domain: ".local", Hosts: []string{"localhost"}}))
	var hosts map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &hosts))
	assert.Equal(t, ".local", hosts["domain"])

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrUsage, "bad flag").WithDetail("flag", "--ssh")))
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &obj))
	assert.Equal(t, "USAGE", obj["code"])
	assert.Equal(t, map[string]interface{}{"flag": "--ssh"}, obj["details"])
}

func TestTextRenderer_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderError(errors.New(errors.ErrUsage, "bad flag")))
	assert.Equal(t, "Error: bad flag\n", buf.String())
}
