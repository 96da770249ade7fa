package isna

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/isna/internal/version"
	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/commands"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
	"github.com/arthur-debert/isna/pkg/query"
	"github.com/arthur-debert/isna/pkg/templates"
	"github.com/arthur-debert/isna/pkg/types"
	"github.com/arthur-debert/isna/pkg/ui"
	"github.com/arthur-debert/isna/pkg/vars"

	// Registers the bundled "isna" package root.
	_ "github.com/arthur-debert/isna/playbooks"
)

// Deps are the collaborators that reach outside the process. Zero fields
// get the real implementations.
type Deps struct {
	Executor    command.Executor
	NewResolver func(*config.Config) *query.Resolver
	FileSystem  afero.Fs
}

// ExitError carries a failed playbook's exit status out of a run. The
// failure has already been reported when it is returned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf(MsgErrExitStatus, e.Code)
}

// app holds flag values and the loaded configuration for one command line.
type app struct {
	deps Deps

	verbosity  int
	configFile string
	format     ui.Format
	dirs       []string
	varsText   string

	ssh    string
	sudo   string
	dryRun bool

	cfg *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(Deps{})
}

// NewRootCmdWithDeps creates the root command around deps.
func NewRootCmdWithDeps(deps Deps) *cobra.Command {
	rootCmd, _ := newRoot(deps)
	return rootCmd
}

func newRoot(deps Deps) (*cobra.Command, *app) {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	if deps.Executor == nil {
		deps.Executor = command.NewReal()
	}
	if deps.NewResolver == nil {
		deps.NewResolver = query.NewForProcess
	}
	if deps.FileSystem == nil {
		deps.FileSystem = afero.NewOsFs()
	}
	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:               "isna [flags] TEMPLATE...",
		Short:             MsgRootShort,
		Long:              MsgRootLong,
		Example:           MsgRunExample,
		Version:           version.Version,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: a.templateNamesCompletion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			_, err := a.config()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errors.New(errors.ErrUsage, MsgErrNoTemplate)
			}
			return a.runTemplates(cmd, args)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&a.configFile, "config", "", MsgFlagConfig)
	pf.Var(&a.format, "format", MsgFlagFormat)
	pf.StringArrayVar(&a.dirs, "dir", nil, MsgFlagDir)
	pf.StringVar(&a.varsText, "vars", "", MsgFlagVars)
	a.addRunFlags(rootCmd)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(a.newRunCmd())
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	initHelpTopics(rootCmd)

	return rootCmd, a
}

func (a *app) addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.ssh, "ssh", "", MsgFlagSSH)
	cmd.Flags().StringVar(&a.sudo, "sudo", "", MsgFlagSudo)
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)
}

// config loads the configuration once per command line. Shell completion
// skips the pre-run hook, so completers call it too.
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(config.Options{File: a.configFile})
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// searchPath orders the roots: directories of template file arguments,
// then --dir entries, then the configured template_dirs.
func (a *app) searchPath(argRoots []templates.SearchRoot) ([]templates.SearchRoot, error) {
	explicit := append([]templates.SearchRoot{}, argRoots...)
	for _, dir := range a.dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, errors.Newf(errors.ErrUsage, MsgErrNotDir, dir)
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		explicit = append(explicit, templates.Dir(dir))
	}
	defaults, err := templates.RootsFromConfig(a.cfg.TemplateDirs)
	if err != nil {
		return nil, err
	}
	return templates.ResolveSearchPath(explicit, defaults), nil
}

// cliVars parses --vars, reading the text from a file for @FILE.
func (a *app) cliVars() (map[string]any, error) {
	text := a.varsText
	if text == "" {
		return nil, nil
	}
	if path, ok := strings.CutPrefix(text, "@"); ok {
		data, err := afero.ReadFile(a.deps.FileSystem, path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, MsgErrReadVars, path)
		}
		text = string(data)
	}
	return vars.ParseWith(text, a.cfg.Input.KVSeparator, a.cfg.Input.PairSeparator), nil
}

func (a *app) render(cmd *cobra.Command, result interface{}) error {
	renderer, err := ui.NewRenderer(a.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return renderer.RenderResult(result)
}

func (a *app) runTemplates(cmd *cobra.Command, args []string) error {
	conn, err := types.ParseConnection(a.ssh)
	if err != nil {
		return err
	}
	names, argRoots := templates.FromArgs(args)
	searchPath, err := a.searchPath(argRoots)
	if err != nil {
		return err
	}
	cliVars, err := a.cliVars()
	if err != nil {
		return err
	}

	log.Info().
		Strs("templates", names).
		Str("connection", conn.String()).
		Bool("dry_run", a.dryRun).
		Msg("Running templates")

	result, err := commands.Run(cmd.Context(), commands.RunOptions{
		Templates:  names,
		SearchPath: searchPath,
		Vars:       cliVars,
		Connection: conn,
		Escalation: types.EscalationSpec{User: a.sudo},
		DryRun:     a.dryRun,
		Config:     a.cfg,
		Resolver:   a.deps.NewResolver(a.cfg),
		Executor:   a.deps.Executor,
		FileSystem: a.deps.FileSystem,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	result.ExtraVars = commands.Redacted(result.ExtraVars, a.cfg.Secrets)
	if err := a.render(cmd, result); err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// templateNamesCompletion completes template names from the search path.
// Files stay completable since a template may be given by path.
func (a *app) templateNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := a.config()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	searchPath, err := a.searchPath(nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	result, err := commands.ListTemplates(commands.ListTemplatesOptions{
		SearchPath: searchPath,
		Extensions: cfg.TemplateExtensions,
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, t := range result.Templates {
		if !slices.Contains(args, t.Name) {
			names = append(names, t.Name)
		}
	}
	return names, cobra.ShellCompDirectiveDefault
}

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "run [flags] TEMPLATE...",
		Short:             MsgRunShort,
		Long:              MsgRunLong,
		Example:           MsgRunExample,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: a.templateNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTemplates(cmd, args)
		},
	}
	a.addRunFlags(cmd)
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   MsgListShort,
		Example: MsgListExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.newListTemplatesCmd())
	cmd.AddCommand(a.newListVarsCmd())
	cmd.AddCommand(a.newListHostsCmd())
	return cmd
}

func (a *app) newListTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "temp",
		Short: MsgListTempShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			searchPath, err := a.searchPath(nil)
			if err != nil {
				return err
			}
			result, err := commands.ListTemplates(commands.ListTemplatesOptions{
				SearchPath: searchPath,
				Extensions: a.cfg.TemplateExtensions,
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
}

func (a *app) newListVarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "vars TEMPLATE...",
		Short:             MsgListVarsShort,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: a.templateNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, argRoots := templates.FromArgs(args)
			searchPath, err := a.searchPath(argRoots)
			if err != nil {
				return err
			}
			cliVars, err := a.cliVars()
			if err != nil {
				return err
			}
			result, err := commands.ListVariables(commands.ListVariablesOptions{
				SearchPath: searchPath,
				Templates:  names,
				Vars:       cliVars,
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
}

func (a *app) newListHostsCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: MsgListHostsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ListHosts(cmd.Context(), commands.ListHostsOptions{
				Executor:    a.deps.Executor,
				Discovery:   a.cfg.Discovery,
				Domain:      domain,
				DefaultHost: a.cfg.DefaultHost,
			})
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", MsgFlagDomain)
	return cmd
}

func (a *app) newConfigCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.GenConfig(commands.GenConfigOptions{
				Config:     a.cfg,
				Write:      write,
				FileSystem: a.deps.FileSystem,
			})
			if err != nil {
				return err
			}
			if ui.Resolve(a.format, cmd.OutOrStdout()) == ui.FormatJSON {
				return a.render(cmd, result)
			}
			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), result.ConfigContent)
				return err
			}
			if result.FileWritten == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), MsgConfigExists)
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), MsgConfigWritten, result.FileWritten)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "isna "+version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
