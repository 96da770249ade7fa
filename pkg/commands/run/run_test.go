// pkg/commands/run/run_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Temp directories, MockExecutor, MockPrompter, afero MemMapFs
// PURPOSE: Test the full resolve, render, probe and execute flow

package run_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/commands/run"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/query"
	"github.com/arthur-debert/isna/pkg/templates"
	"github.com/arthur-debert/isna/pkg/testutil"
	"github.com/arthur-debert/isna/pkg/types"
)

// fakeHost answers ssh, sudo and ansible-playbook calls and keeps the
// variables each playbook run received.
type fakeHost struct {
	fs           afero.Fs
	probeStatus  int
	probeStderr  string
	playStatuses []int
	runs         []map[string]any
}

func (f *fakeHost) executor(t *testing.T) *testutil.MockExecutor {
	return &testutil.MockExecutor{
		ExecuteFunc: func(_ context.Context, c command.Command) (*command.Result, error) {
			switch c.Name {
			case "ssh", "sudo":
				return &command.Result{ExitCode: f.probeStatus, Stderr: []byte(f.probeStderr)}, nil
			case "ansible-playbook":
				data, err := afero.ReadFile(f.fs, strings.TrimPrefix(c.Args[4], "@"))
				require.NoError(t, err)
				var v map[string]any
				require.NoError(t, json.Unmarshal(data, &v))
				f.runs = append(f.runs, v)
				status := 0
				if len(f.playStatuses) > 0 {
					status = f.playStatuses[0]
					f.playStatuses = f.playStatuses[1:]
				}
				return &command.Result{ExitCode: status}, nil
			}
			t.Fatalf("unexpected command %s", c)
			return nil, nil
		},
	}
}

func templateDir(t *testing.T, files map[string]string) []templates.SearchRoot {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return []templates.SearchRoot{templates.Dir(dir)}
}

func piped(stdin string) *query.Resolver {
	return query.New(query.Settings{Stdin: strings.NewReader(stdin), Secrets: config.Default().Secrets})
}

func interactive(p query.Prompter) *query.Resolver {
	return query.New(query.Settings{Interactive: true, Prompter: p, Secrets: config.Default().Secrets})
}

func TestRun_PipedHelloWorld(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs()}

	result, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"hello.yml"},
		SearchPath: templateDir(t, map[string]string{"hello.yml": "Hello <@ name @>"}),
		Resolver:   piped("name=World"),
		Executor:   host.executor(t),
		FileSystem: host.fs,
	})
	require.NoError(t, err)

	require.Len(t, result.Playbooks, 1)
	assert.Equal(t, "Hello World", result.Playbooks[0].Document)
	assert.Equal(t, []string{"localhost"}, result.Hosts)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 1, result.Completed)

	require.Len(t, host.runs, 1)
	assert.Equal(t, "local", host.runs[0]["ansible_connection"])
	assert.Equal(t, "/usr/bin/python3", host.runs[0]["ansible_python_interpreter"])
	assert.NotContains(t, host.runs[0], "name")
}

func TestRun_PipedMissingVariable(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs()}
	exec := host.executor(t)

	_, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"t.yml"},
		SearchPath: templateDir(t, map[string]string{"t.yml": "<@ .alpha @>"}),
		Resolver:   piped("{}"),
		Executor:   exec,
		FileSystem: host.fs,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrResolverInput))
	assert.Equal(t, "alpha", errors.GetErrorDetail(err, "variable"))
	assert.Empty(t, exec.Calls())
}

func TestRun_MixedReferenceForms(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs()}

	result, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"playbook1.yml"},
		SearchPath: templateDir(t, map[string]string{"playbook1.yml": "<@ alpha @>\n<@ .beta @>\n<@ $.gamma @>"}),
		Resolver:   piped("alpha=0; beta=1; gamma=2"),
		DryRun:     true,
		Executor:   host.executor(t),
		FileSystem: host.fs,
	})
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2", result.Playbooks[0].Document)
}

func TestRun_DryRunSkipsProbeAndExecution(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs()}
	exec := host.executor(t)

	result, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"t.yml"},
		SearchPath: templateDir(t, map[string]string{"t.yml": "<@ .a @>"}),
		Vars:       map[string]any{"a": "1", "extra": "x"},
		Connection: types.ConnectionSpec{User: "deploy", Host: "web1"},
		Escalation: types.EscalationSpec{User: "root"},
		Resolver:   piped(""),
		DryRun:     true,
		Executor:   exec,
		FileSystem: host.fs,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Empty(t, exec.Calls())
	assert.Equal(t, []string{"web1"}, result.Hosts)
	assert.Equal(t, map[string]any{
		"extra":                 "x",
		"ansible_user":          "deploy",
		"ansible_port":          22,
		"ansible_become":        true,
		"ansible_become_method": "sudo",
		"ansible_become_user":   "root",
	}, result.ExtraVars)
}

func TestRun_RemoteNeedsPassword(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs(), probeStatus: 255, probeStderr: "Permission denied (publickey,password)."}
	exec := host.executor(t)

	result, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"t.yml"},
		SearchPath: templateDir(t, map[string]string{"t.yml": "- hosts: all"}),
		Connection: types.ConnectionSpec{User: "deploy", Host: "web1", Port: 2222},
		Resolver:   piped("ansible_ssh_pass=s3cret"),
		Executor:   exec,
		FileSystem: host.fs,
	})
	require.NoError(t, err)
	assert.True(t, result.SSHNeedsPassword)

	calls := exec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "ssh", calls[0].Name)
	assert.Contains(t, calls[0].Args, "deploy@web1")
	assert.Contains(t, calls[0].Args, "2222")

	require.Len(t, host.runs, 1)
	assert.Equal(t, "s3cret", host.runs[0]["ansible_ssh_pass"])
	assert.Equal(t, "deploy", host.runs[0]["ansible_user"])
	assert.Equal(t, float64(2222), host.runs[0]["ansible_port"])
}

func TestRun_SuppliedPasswordNotAskedAgain(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs(), probeStatus: 255}
	prompter := &testutil.MockPrompter{}

	_, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"t.yml"},
		SearchPath: templateDir(t, map[string]string{"t.yml": "- hosts: all"}),
		Vars:       map[string]any{"ansible_ssh_pass": "given"},
		Connection: types.ConnectionSpec{Host: "web1"},
		Resolver:   interactive(prompter),
		Executor:   host.executor(t),
		FileSystem: host.fs,
	})
	require.NoError(t, err)
	assert.Empty(t, prompter.Prompts)
	assert.Equal(t, "given", host.runs[0]["ansible_ssh_pass"])
}

func TestRun_LocalSudoPassword(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs(), probeStatus: 1}
	prompter := &testutil.MockPrompter{Passwords: []string{"pw", "pw"}}
	exec := host.executor(t)

	result, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"t.yml"},
		SearchPath: templateDir(t, map[string]string{"t.yml": "- hosts: all"}),
		Escalation: types.EscalationSpec{User: "root"},
		Resolver:   interactive(prompter),
		Executor:   exec,
		FileSystem: host.fs,
	})
	require.NoError(t, err)
	assert.True(t, result.SudoNeedsPassword)
	assert.Equal(t, "sudo", exec.Calls()[0].Name)
	assert.Equal(t, "pw", host.runs[0]["ansible_become_pass"])
	assert.Equal(t, true, host.runs[0]["ansible_become"])
}

func TestRun_ConnectionFailureStopsRun(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs(), probeStatus: 255, probeStderr: "ssh: connect to host web1 port 22: Connection refused"}
	exec := host.executor(t)

	_, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"t.yml"},
		SearchPath: templateDir(t, map[string]string{"t.yml": "- hosts: all"}),
		Connection: types.ConnectionSpec{Host: "web1"},
		Resolver:   piped(""),
		Executor:   exec,
		FileSystem: host.fs,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConnection))
	assert.Len(t, exec.Calls(), 1)
	assert.Empty(t, host.runs)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs(), playStatuses: []int{0, 4, 0}}

	result, err := run.Run(context.Background(), run.RunOptions{
		Templates: []string{"a.yml", "b.yml", "c.yml"},
		SearchPath: templateDir(t, map[string]string{
			"a.yml": "<@ .x @>",
			"b.yml": "<@ .y @>",
			"c.yml": "<@ .x @><@ .y @>",
		}),
		Vars:       map[string]any{"x": "1", "y": "2", "other": "3"},
		Resolver:   piped(""),
		Executor:   host.executor(t),
		FileSystem: host.fs,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.ExitCode)
	assert.Equal(t, 1, result.Completed)
	assert.Len(t, host.runs, 2)
	assert.Equal(t, "3", host.runs[0]["other"])
	assert.NotContains(t, host.runs[0], "x")
}

func TestRun_RenderFailureRunsNothing(t *testing.T) {
	host := &fakeHost{fs: afero.NewMemMapFs()}
	exec := host.executor(t)

	_, err := run.Run(context.Background(), run.RunOptions{
		Templates:  []string{"good.yml", "missing.yml"},
		SearchPath: templateDir(t, map[string]string{"good.yml": "ok"}),
		Resolver:   piped(""),
		Executor:   exec,
		FileSystem: host.fs,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
	assert.Empty(t, exec.Calls())
}

func TestRun_RequiresTemplate(t *testing.T) {
	_, err := run.Run(context.Background(), run.RunOptions{Resolver: piped("")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
}

func TestRedacted(t *testing.T) {
	got := run.Redacted(map[string]any{
		"ansible_ssh_pass": "x",
		"db_password":      "y",
		"user":             "z",
	}, config.Default().Secrets)

	assert.Equal(t, map[string]any{
		"ansible_ssh_pass": "********",
		"db_password":      "********",
		"user":             "z",
	}, got)
}
