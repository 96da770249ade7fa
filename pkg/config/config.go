package config

import (
	"strings"

	"github.com/arthur-debert/isna/pkg/errors"
)

// Config is the decoded, validated configuration.
type Config struct {
	DefaultHost        string        `koanf:"default_host" toml:"default_host"`
	DefaultSSHPort     int           `koanf:"default_ssh_port" toml:"default_ssh_port"`
	TemplateExtensions []string      `koanf:"template_extensions" toml:"template_extensions"`
	Literals           Literals      `koanf:"literals" toml:"literals"`
	Secrets            Secrets       `koanf:"secrets" toml:"secrets"`
	TemplateDirs       []TemplateDir `koanf:"template_dirs" toml:"template_dirs"`
	Ansible            Ansible       `koanf:"ansible" toml:"ansible"`
	Probe              Probe         `koanf:"probe" toml:"probe"`
	Discovery          Discovery     `koanf:"discovery" toml:"discovery"`
	Input              Input         `koanf:"input" toml:"input"`
}

// Literals are the strings (compared case-insensitively) read as booleans.
type Literals struct {
	True  []string `koanf:"true" toml:"true"`
	False []string `koanf:"false" toml:"false"`
}

// Secrets lists the name fragments that mark a variable as secret.
type Secrets struct {
	Substrings []string `koanf:"substrings" toml:"substrings"`
}

// IsSecret reports whether name contains one of the secret substrings,
// ignoring case.
func (s Secrets) IsSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, sub := range s.Substrings {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// TemplateDir is one configured template search root. Exactly one of Path
// or Package must be set.
type TemplateDir struct {
	Path    string `koanf:"path" toml:"path,omitempty"`
	Package string `koanf:"package" toml:"package,omitempty"`
	Folder  string `koanf:"folder" toml:"folder,omitempty"`
}

// Ansible configures the playbook runner.
type Ansible struct {
	PlaybookBinary string                 `koanf:"playbook_binary" toml:"playbook_binary"`
	CommonVars     map[string]interface{} `koanf:"common_vars" toml:"common_vars"`
}

// Probe configures the credential probe.
type Probe struct {
	SSHBinary             string   `koanf:"ssh_binary" toml:"ssh_binary"`
	SudoBinary            string   `koanf:"sudo_binary" toml:"sudo_binary"`
	StrictHostKeyChecking string   `koanf:"strict_host_key_checking" toml:"strict_host_key_checking"`
	NoAuthStatus          int      `koanf:"no_auth_status" toml:"no_auth_status"`
	ConnectionFailures    []string `koanf:"connection_failures" toml:"connection_failures"`
}

// Discovery configures mDNS host discovery.
type Discovery struct {
	Command string   `koanf:"command" toml:"command"`
	Args    []string `koanf:"args" toml:"args"`
	Domain  string   `koanf:"domain" toml:"domain"`
}

// Input configures the key=value text format.
type Input struct {
	PairSeparator string `koanf:"pair_separator" toml:"pair_separator"`
	KVSeparator   string `koanf:"kv_separator" toml:"kv_separator"`
}

// Validate checks the settings that cannot be repaired by defaults.
func (c *Config) Validate() error {
	for i, dir := range c.TemplateDirs {
		hasPath := dir.Path != ""
		hasPackage := dir.Package != ""
		if hasPath == hasPackage {
			return errors.Newf(errors.ErrConfigValid,
				"template_dirs[%d] must set exactly one of path or package", i).
				WithDetail("entry", dir)
		}
		if hasPath && dir.Folder != "" {
			return errors.Newf(errors.ErrConfigValid,
				"template_dirs[%d]: folder only applies to package roots", i).
				WithDetail("entry", dir)
		}
	}

	if c.DefaultSSHPort < 1 || c.DefaultSSHPort > 65535 {
		return errors.Newf(errors.ErrConfigValid, "default_ssh_port %d is out of range", c.DefaultSSHPort)
	}
	if len(c.TemplateExtensions) == 0 {
		return errors.New(errors.ErrConfigValid, "template_extensions must not be empty")
	}
	switch c.Probe.StrictHostKeyChecking {
	case "", "yes", "no":
	default:
		return errors.Newf(errors.ErrConfigValid,
			"probe.strict_host_key_checking must be empty, yes or no, got %q", c.Probe.StrictHostKeyChecking)
	}
	if c.Input.PairSeparator == "" || c.Input.KVSeparator == "" {
		return errors.New(errors.ErrConfigValid, "input separators must not be empty")
	}
	if c.Input.PairSeparator == c.Input.KVSeparator {
		return errors.New(errors.ErrConfigValid, "input.pair_separator and input.kv_separator must differ")
	}
	return nil
}
