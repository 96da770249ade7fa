package isna

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Render ansible playbook templates and run them"
	MsgRunShort        = "Render templates and run them with ansible-playbook"
	MsgListShort       = "List templates, template variables or hosts"
	MsgListTempShort   = "List the templates on the search path"
	MsgListVarsShort   = "List the variables templates read"
	MsgListHostsShort  = "List hosts announced on the local network"
	MsgConfigShort     = "Print the effective configuration as TOML"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Configuration file (default $XDG_CONFIG_HOME/isna/config.toml)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagDir     = "Template directory searched before the defaults (repeatable)"
	MsgFlagVars    = "Variables as JSON or key=value pairs, or @FILE to read them"
	MsgFlagSSH     = "Run against [USER@]HOST[:PORT] over ssh"
	MsgFlagSudo    = "Escalate to USER with sudo"
	MsgFlagDryRun  = "Render and show the playbooks without running them"
	MsgFlagDomain  = "Domain suffix of the hosts to list"
	MsgFlagWrite   = "Save the configuration as the user configuration file"

	// Status messages
	MsgConfigWritten = "Configuration written to %s\n"
	MsgConfigExists  = "Configuration file already exists, not overwritten"

	// Error messages
	MsgErrNoTemplate  = "at least one template is required"
	MsgErrNotDir      = "--dir %s is not a directory"
	MsgErrReadVars    = "cannot read variables from %s"
	MsgErrExitStatus  = "ansible-playbook exited with status %d"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
