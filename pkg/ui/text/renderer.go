// Package text renders command results as plain, line-oriented text.
package text

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/types"
)

// Styler decorates a piece of output by semantic name (Header, Muted,
// Error, ...). The plain styler returns the text unchanged.
type Styler func(name, s string) string

func plain(_ string, s string) string { return s }

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
	style  Styler
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return NewStyled(output, nil)
}

// NewStyled creates a text renderer that decorates its output with style.
func NewStyled(output io.Writer, style Styler) (*Renderer, error) {
	if style == nil {
		style = plain
	}
	return &Renderer{output: output, style: style}, nil
}

// RenderResult renders a command result
func (r *Renderer) RenderResult(result interface{}) error {
	var b strings.Builder
	switch v := result.(type) {
	case *types.RunResult:
		r.run(&b, v)
	case *types.ListTemplatesResult:
		r.templates(&b, v)
	case *types.ListVariablesResult:
		r.variables(&b, v)
	case *types.ListHostsResult:
		for _, h := range v.Hosts {
			b.WriteString(r.style("Host", h) + "\n")
		}
	default:
		fmt.Fprintf(&b, "%+v\n", result)
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) run(b *strings.Builder, v *types.RunResult) {
	if !v.DryRun {
		if v.ExitCode != 0 {
			fmt.Fprintf(b, "%s\n", r.style("Error",
				fmt.Sprintf("ansible-playbook exited with status %d after %d of %d playbooks", v.ExitCode, v.Completed, len(v.Playbooks))))
		}
		return
	}

	for _, pb := range v.Playbooks {
		fmt.Fprintf(b, "%s\n", r.style("Header", "# "+pb.Template))
		b.WriteString(pb.Document)
		if !strings.HasSuffix(pb.Document, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s %s\n", r.style("Key", "hosts:"), strings.Join(v.Hosts, ","))
	b.WriteString(r.style("Key", "extra vars:") + "\n")
	if len(v.ExtraVars) > 0 {
		out, err := yaml.Marshal(v.ExtraVars)
		if err != nil {
			fmt.Fprintf(b, "  %v\n", v.ExtraVars)
		} else {
			for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
				b.WriteString("  " + line + "\n")
			}
		}
	}
	b.WriteString(r.style("Muted", "dry run: nothing was executed") + "\n")
}

func (r *Renderer) templates(b *strings.Builder, v *types.ListTemplatesResult) {
	if len(v.Templates) == 0 {
		fmt.Fprintf(b, "No templates found in %s\n", strings.Join(v.Roots, ", "))
		return
	}
	for _, t := range v.Templates {
		fmt.Fprintf(b, "%s %s\n", r.style("Template", t.Name), r.style("Muted", "("+t.Root+")"))
	}
}

func (r *Renderer) variables(b *strings.Builder, v *types.ListVariablesResult) {
	for i, t := range v.Templates {
		if len(v.Templates) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(r.style("Header", t.Template+":") + "\n")
		}
		undefined := map[string]bool{}
		for _, u := range t.Undefined {
			undefined[u] = true
		}
		for _, name := range t.Variables {
			line := name
			if !undefined[name] {
				line += " " + r.style("Muted", "(set)")
			}
			b.WriteString(line + "\n")
		}
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, r.style("Error", "Error: "+errors.Describe(err)))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
