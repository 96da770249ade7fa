package types

// RenderedPlaybook is one template after rendering.
type RenderedPlaybook struct {
	Template string `json:"template"`
	Document string `json:"document"`
}

// RunResult is the outcome of the run command. ExitCode is the status of
// the last ansible-playbook invocation, or 0 for a dry run.
type RunResult struct {
	Playbooks []RenderedPlaybook `json:"playbooks"`
	Hosts     []string           `json:"hosts"`
	ExtraVars map[string]any     `json:"extra_vars"`
	DryRun    bool               `json:"dry_run"`
	ExitCode  int                `json:"exit_code"`
	// Completed counts the playbooks that ran to a zero status.
	Completed int `json:"completed"`

	SSHNeedsPassword  bool `json:"ssh_needs_password"`
	SudoNeedsPassword bool `json:"sudo_needs_password"`
}

// TemplateInfo describes a template found on the search path.
type TemplateInfo struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

// ListTemplatesResult is the outcome of `ls temp`.
type ListTemplatesResult struct {
	Templates []TemplateInfo `json:"templates"`
	Roots     []string       `json:"roots"`
}

// TemplateVariables lists the variables one template reads and which of
// them are still unknown.
type TemplateVariables struct {
	Template  string   `json:"template"`
	Variables []string `json:"variables"`
	Undefined []string `json:"undefined"`
}

// ListVariablesResult is the outcome of `ls vars`.
type ListVariablesResult struct {
	Templates []TemplateVariables `json:"templates"`
}

// ListHostsResult is the outcome of `ls hosts`.
type ListHostsResult struct {
	Domain string   `json:"domain"`
	Hosts  []string `json:"hosts"`
}

// GenConfigResult is the outcome of the config command.
type GenConfigResult struct {
	ConfigContent string `json:"config"`
	// FileWritten is empty unless the configuration was saved.
	FileWritten string `json:"file_written,omitempty"`
}
