// Package commands provides high-level command implementations for isna.
//
// This package is the orchestration layer between the CLI and the
// template, resolver, probe and playbook packages. Each command lives in
// its own subdirectory:
//   - run/  - Run command (resolve, render, probe, execute)
//   - list/ - ListTemplates, ListVariables and ListHosts commands
//   - genconfig/ - GenConfig command
//
// This file re-exports the command functions so the CLI depends on a
// single package.
package commands

import (
	"context"

	"github.com/arthur-debert/isna/pkg/commands/genconfig"
	"github.com/arthur-debert/isna/pkg/commands/list"
	"github.com/arthur-debert/isna/pkg/commands/run"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/types"
)

// RunOptions holds the options for Run.
type RunOptions = run.RunOptions

// Run renders the templates and runs them with ansible-playbook.
func Run(ctx context.Context, opts RunOptions) (*types.RunResult, error) {
	return run.Run(ctx, opts)
}

// ListTemplatesOptions holds the options for ListTemplates.
type ListTemplatesOptions = list.ListTemplatesOptions

// ListTemplates finds the templates on the search path.
func ListTemplates(opts ListTemplatesOptions) (*types.ListTemplatesResult, error) {
	return list.ListTemplates(opts)
}

// ListVariablesOptions holds the options for ListVariables.
type ListVariablesOptions = list.ListVariablesOptions

// ListVariables reports the variables templates read.
func ListVariables(opts ListVariablesOptions) (*types.ListVariablesResult, error) {
	return list.ListVariables(opts)
}

// ListHostsOptions holds the options for ListHosts.
type ListHostsOptions = list.ListHostsOptions

// ListHosts discovers hosts on the local network.
func ListHosts(ctx context.Context, opts ListHostsOptions) (*types.ListHostsResult, error) {
	return list.ListHosts(ctx, opts)
}

// GenConfigOptions holds the options for GenConfig.
type GenConfigOptions = genconfig.GenConfigOptions

// GenConfig renders the effective configuration as TOML.
func GenConfig(opts GenConfigOptions) (*types.GenConfigResult, error) {
	return genconfig.GenConfig(opts)
}

// Redacted masks the secret values in vars for display.
func Redacted(vars map[string]any, secrets config.Secrets) map[string]any {
	return run.Redacted(vars, secrets)
}
