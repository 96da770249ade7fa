package list

import (
	"context"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/hosts"
	"github.com/arthur-debert/isna/pkg/logging"
	"github.com/arthur-debert/isna/pkg/templates"
	"github.com/arthur-debert/isna/pkg/types"
	"github.com/arthur-debert/isna/pkg/vars"
)

// ListTemplatesOptions defines the options for the ListTemplates command.
type ListTemplatesOptions struct {
	// SearchPath is the resolved template search path.
	SearchPath []templates.SearchRoot
	// Extensions select the files that count as templates.
	Extensions []string
}

// ListTemplates finds every template on the search path, with the root a
// lookup would take it from.
func ListTemplates(opts ListTemplatesOptions) (*types.ListTemplatesResult, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Str("command", "ListTemplates").Msg("Executing command")

	reg, err := templates.NewRegistry(opts.SearchPath)
	if err != nil {
		return nil, err
	}
	names, err := reg.List(opts.Extensions)
	if err != nil {
		return nil, err
	}

	result := &types.ListTemplatesResult{
		Templates: make([]types.TemplateInfo, 0, len(names)),
		Roots:     make([]string, 0, len(opts.SearchPath)),
	}
	for _, root := range reg.Roots() {
		result.Roots = append(result.Roots, root.String())
	}
	for _, name := range names {
		info := types.TemplateInfo{Name: name}
		if root, ok := reg.Locate(name); ok {
			info.Root = root.String()
		}
		result.Templates = append(result.Templates, info)
	}

	log.Info().Str("command", "ListTemplates").Int("templateCount", len(result.Templates)).Msg("Command finished")
	return result, nil
}

// ListVariablesOptions defines the options for the ListVariables command.
type ListVariablesOptions struct {
	SearchPath []templates.SearchRoot
	Templates  []string
	// Vars are values already known; they are left out of Undefined.
	Vars map[string]any
}

// ListVariables reports the variables each template reads.
func ListVariables(opts ListVariablesOptions) (*types.ListVariablesResult, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Str("command", "ListVariables").Strs("templates", opts.Templates).Msg("Executing command")

	reg, err := templates.NewRegistry(opts.SearchPath)
	if err != nil {
		return nil, err
	}
	store := vars.NewStore(opts.Vars)

	result := &types.ListVariablesResult{}
	for _, name := range opts.Templates {
		names, err := reg.FreeVariables(name)
		if err != nil {
			return nil, err
		}
		result.Templates = append(result.Templates, types.TemplateVariables{
			Template:  name,
			Variables: names,
			Undefined: store.UndefinedFor(names, nil),
		})
	}

	log.Info().Str("command", "ListVariables").Int("templateCount", len(result.Templates)).Msg("Command finished")
	return result, nil
}

// ListHostsOptions defines the options for the ListHosts command.
type ListHostsOptions struct {
	Executor  command.Executor
	Discovery config.Discovery
	// Domain overrides Discovery.Domain when set.
	Domain string
	// DefaultHost is listed first.
	DefaultHost string
}

// ListHosts discovers hosts on the local network. The default host always
// comes first.
func ListHosts(ctx context.Context, opts ListHostsOptions) (*types.ListHostsResult, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Str("command", "ListHosts").Msg("Executing command")

	domain := opts.Domain
	if domain == "" {
		domain = opts.Discovery.Domain
	}
	found, err := hosts.Discover(ctx, opts.Executor, opts.Discovery, domain)
	if err != nil {
		return nil, err
	}

	result := &types.ListHostsResult{Domain: domain}
	if opts.DefaultHost != "" {
		result.Hosts = append(result.Hosts, opts.DefaultHost)
	}
	for _, h := range found {
		if h != opts.DefaultHost {
			result.Hosts = append(result.Hosts, h)
		}
	}

	log.Info().Str("command", "ListHosts").Int("hostCount", len(result.Hosts)).Msg("Command finished")
	return result, nil
}
