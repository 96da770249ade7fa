package run

import (
	"context"
	"io"
	"sort"

	"github.com/spf13/afero"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
	"github.com/arthur-debert/isna/pkg/playbook"
	"github.com/arthur-debert/isna/pkg/probe"
	"github.com/arthur-debert/isna/pkg/query"
	"github.com/arthur-debert/isna/pkg/templates"
	"github.com/arthur-debert/isna/pkg/types"
	"github.com/arthur-debert/isna/pkg/vars"
)

const (
	// SSHPasswordVar carries the ssh password to ansible.
	SSHPasswordVar = "ansible_ssh_pass"
	// BecomePasswordVar carries the sudo password to ansible.
	BecomePasswordVar = "ansible_become_pass"
)

// RunOptions defines the options for the Run command.
type RunOptions struct {
	// Templates are rendered and run in order.
	Templates []string
	// SearchPath is the resolved template search path.
	SearchPath []templates.SearchRoot
	// Vars are values given on the command line. Template variables found
	// here are not asked for.
	Vars map[string]any

	Connection types.ConnectionSpec
	Escalation types.EscalationSpec
	DryRun     bool

	Config   *config.Config
	Resolver *query.Resolver
	Executor command.Executor
	// FileSystem holds the temporary playbook files.
	FileSystem afero.Fs
	// Stdout and Stderr receive ansible-playbook output.
	Stdout io.Writer
	Stderr io.Writer
}

// Run resolves the variables the templates need, renders them, probes the
// connection for passwords and runs each playbook in turn. The first
// playbook exiting non-zero ends the run; its status is the result's
// ExitCode. Failures before execution abort the run with an error.
func Run(ctx context.Context, opts RunOptions) (*types.RunResult, error) {
	log := logging.GetLogger("commands.run")
	log.Debug().Str("command", "Run").Strs("templates", opts.Templates).Msg("Executing command")

	if len(opts.Templates) == 0 {
		return nil, errors.New(errors.ErrUsage, "at least one template is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fs := opts.FileSystem
	if fs == nil {
		fs = afero.NewOsFs()
	}

	reg, err := templates.NewRegistry(opts.SearchPath)
	if err != nil {
		return nil, err
	}
	store := vars.NewStore(opts.Vars)
	maker := playbook.NewMaker(reg, store, vars.Literals(cfg.Literals))

	templateVars, err := collectVariables(maker, opts.Templates)
	if err != nil {
		return nil, err
	}
	for _, name := range store.UndefinedFor(templateVars, nil) {
		res, err := opts.Resolver.Query(ctx, name, query.Options{})
		if err != nil {
			return nil, err
		}
		store.Record(name, res.Value)
	}

	result := &types.RunResult{DryRun: opts.DryRun}
	for _, name := range opts.Templates {
		doc, err := maker.Render(name, nil)
		if err != nil {
			return nil, err
		}
		result.Playbooks = append(result.Playbooks, types.RenderedPlaybook{Template: name, Document: doc})
	}

	extra := extraVars(store, opts.Resolver.Data(), templateVars)
	for k, v := range playbook.ConnectionVars(opts.Connection, opts.Escalation, cfg.DefaultSSHPort) {
		extra[k] = v
	}
	result.Hosts = playbook.HostList(opts.Connection, cfg.DefaultHost)
	result.ExtraVars = extra

	if opts.DryRun {
		log.Info().Int("playbooks", len(result.Playbooks)).Msg("Dry run, nothing executed")
		return result, nil
	}

	if err := resolvePasswords(ctx, opts, cfg, result); err != nil {
		return nil, err
	}

	runner := playbook.NewRunner(opts.Executor, fs, cfg.Ansible, opts.Stdout, opts.Stderr)
	for _, pb := range result.Playbooks {
		status, err := runner.Run(ctx, pb.Document, result.Hosts, extra)
		if err != nil {
			return nil, err
		}
		if status != 0 {
			log.Warn().Str("template", pb.Template).Int("exitCode", status).Msg("Playbook failed")
			result.ExitCode = status
			break
		}
		result.Completed++
	}

	log.Info().Str("command", "Run").
		Int("completed", result.Completed).
		Int("exitCode", result.ExitCode).
		Msg("Command finished")
	return result, nil
}

// collectVariables returns the sorted union of the templates' variables.
func collectVariables(maker *playbook.Maker, names []string) ([]string, error) {
	seen := map[string]bool{}
	for _, name := range names {
		vs, err := maker.Variables(name)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// extraVars returns every known value that no template reads.
func extraVars(store *vars.Store, resolved map[string]any, templateVars []string) map[string]any {
	out := store.Merged(nil, resolved)
	for _, name := range templateVars {
		delete(out, name)
	}
	return out
}

// resolvePasswords probes the target and asks for the passwords it needs
// that were not given already. They are added to result.ExtraVars.
func resolvePasswords(ctx context.Context, opts RunOptions, cfg *config.Config, result *types.RunResult) error {
	prober := probe.New(opts.Executor, cfg.Probe)
	conn, esc := opts.Connection, opts.Escalation

	var (
		pr  *probe.Result
		err error
	)
	switch {
	case !conn.IsLocal():
		login := conn.User
		if login == "" {
			login = playbook.CurrentUser()
		}
		port := conn.Port
		if port == 0 {
			port = cfg.DefaultSSHPort
		}
		pr, err = prober.ProbeConnection(ctx, login, conn.Host, port, esc.User)
	case esc.Requested():
		pr, err = prober.ProbeSudo(ctx, esc.User)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	result.SSHNeedsPassword = pr.SSHNeedsPassword
	result.SudoNeedsPassword = pr.SudoNeedsPassword

	ask := func(name string, needed bool) error {
		if !needed {
			return nil
		}
		if _, ok := result.ExtraVars[name]; ok {
			return nil
		}
		res, err := opts.Resolver.Query(ctx, name, query.Options{Hide: true, Repeat: true})
		if err != nil {
			return err
		}
		result.ExtraVars[name] = res.Value
		return nil
	}
	if err := ask(SSHPasswordVar, pr.SSHNeedsPassword); err != nil {
		return err
	}
	return ask(BecomePasswordVar, pr.SudoNeedsPassword)
}

// Redacted returns a copy of vars with secret values masked, for display.
func Redacted(vars map[string]any, secrets config.Secrets) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		if secrets.IsSecret(k) {
			v = "********"
		}
		out[k] = v
	}
	return out
}
