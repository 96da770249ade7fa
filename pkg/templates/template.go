package templates

import (
	"sort"
	"text/template/parse"

	"github.com/arthur-debert/isna/pkg/errors"
)

// Delimiters used by every template.
const (
	LeftDelim  = "<@"
	RightDelim = "@>"
)

// Template is a loaded, syntax-checked template.
type Template struct {
	Name   string
	Source string
	Root   SearchRoot

	trees map[string]*parse.Tree
}

// Parse checks source without resolving any function or variable.
func Parse(name, source string) (*Template, error) {
	trees, err := parseTrees(name, source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplateParse, "cannot parse template %s", name).
			WithDetail("template", name)
	}
	return &Template{Name: name, Source: source, trees: trees}, nil
}

func parseTrees(name, source string) (map[string]*parse.Tree, error) {
	treeSet := map[string]*parse.Tree{}
	t := parse.New(name)
	t.Mode = parse.SkipFuncCheck | parse.ParseComments
	if _, err := t.Parse(source, LeftDelim, RightDelim, treeSet); err != nil {
		return nil, err
	}
	return treeSet, nil
}

// FreeVariables returns the sorted names the template reads from its data.
func (t *Template) FreeVariables() []string {
	return freeVariables(t.trees)
}

// FreeVariables parses source and returns its free variables.
func FreeVariables(source string) ([]string, error) {
	trees, err := parseTrees("source", source)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTemplateParse, "cannot parse template")
	}
	return freeVariables(trees), nil
}

func freeVariables(trees map[string]*parse.Tree) []string {
	w := &walker{found: map[string]bool{}}
	for _, tree := range trees {
		if tree == nil || tree.Root == nil {
			continue
		}
		// Defined templates are analyzed as if invoked with the root data.
		w.walk(tree.Root, true)
	}

	names := make([]string, 0, len(w.found))
	for n := range w.found {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// walker collects free names. rootDot is false inside range and with
// bodies, where dot no longer refers to the template data.
type walker struct {
	found map[string]bool
}

func (w *walker) walk(node parse.Node, rootDot bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			w.walk(c, rootDot)
		}
	case *parse.ActionNode:
		w.pipe(n.Pipe, rootDot)
	case *parse.IfNode:
		w.pipe(n.Pipe, rootDot)
		w.walk(n.List, rootDot)
		w.walk(n.ElseList, rootDot)
	case *parse.RangeNode:
		w.pipe(n.Pipe, rootDot)
		w.walk(n.List, false)
		w.walk(n.ElseList, rootDot)
	case *parse.WithNode:
		w.pipe(n.Pipe, rootDot)
		w.walk(n.List, false)
		w.walk(n.ElseList, rootDot)
	case *parse.TemplateNode:
		w.pipe(n.Pipe, rootDot)
	}
}

func (w *walker) pipe(p *parse.PipeNode, rootDot bool) {
	if p == nil {
		return
	}
	for i, cmd := range p.Cmds {
		for j, arg := range cmd.Args {
			if id, ok := arg.(*parse.IdentifierNode); ok {
				// An identifier in function position is a call. Only the
				// first command of a pipeline, used alone, reads a value.
				if j == 0 && (i > 0 || len(cmd.Args) > 1) {
					continue
				}
				if !IsFunc(id.Ident) {
					w.found[id.Ident] = true
				}
				continue
			}
			w.arg(arg, rootDot)
		}
	}
}

func (w *walker) arg(node parse.Node, rootDot bool) {
	switch n := node.(type) {
	case *parse.FieldNode:
		if rootDot && len(n.Ident) > 0 {
			w.found[n.Ident[0]] = true
		}
	case *parse.VariableNode:
		// $ is the template data everywhere; $x was declared in the body.
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			w.found[n.Ident[1]] = true
		}
	case *parse.ChainNode:
		w.arg(n.Node, rootDot)
	case *parse.PipeNode:
		w.pipe(n, rootDot)
	case *parse.IdentifierNode:
		if !IsFunc(n.Ident) {
			w.found[n.Ident] = true
		}
	}
}
