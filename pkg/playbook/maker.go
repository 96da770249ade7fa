package playbook

import (
	"bytes"
	"regexp"
	"sort"
	"sync"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
	"github.com/arthur-debert/isna/pkg/templates"
	"github.com/arthur-debert/isna/pkg/vars"
)

var (
	undefinedFunc = regexp.MustCompile(`function "([^"]+)" not defined`)
	missingKey    = regexp.MustCompile(`map has no entry for key "([^"]+)"`)
	funcName      = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)
)

// Maker renders templates from a registry with values from a store.
type Maker struct {
	registry *templates.Registry
	store    *vars.Store
	literals vars.Literals
	logger   zerolog.Logger

	mu      sync.Mutex
	helpers bool
}

// NewMaker returns a Maker. Values are coerced with literals before
// rendering.
func NewMaker(registry *templates.Registry, store *vars.Store, literals vars.Literals) *Maker {
	return &Maker{
		registry: registry,
		store:    store,
		literals: literals,
		logger:   logging.GetLogger("playbook.maker"),
	}
}

// Variables returns the free variables of the named template.
func (m *Maker) Variables(name string) ([]string, error) {
	return m.registry.FreeVariables(name)
}

// UndefinedVariables returns the variables of name that neither extra nor
// the store can supply.
func (m *Maker) UndefinedVariables(name string, extra map[string]any) ([]string, error) {
	names, err := m.registry.FreeVariables(name)
	if err != nil {
		return nil, err
	}
	return m.store.UndefinedFor(names, extra), nil
}

// Render renders name with overrides shadowing the store. Only the
// variables the template reads are passed to it.
func (m *Maker) Render(name string, overrides map[string]any) (string, error) {
	done := logging.LogOperationStart(m.logger, "render "+name)
	defer done()

	t, err := m.registry.Load(name)
	if err != nil {
		return "", err
	}
	names := t.FreeVariables()
	data := m.literals.CoerceAll(m.store.Merged(names, overrides))

	var missing []string
	for _, n := range names {
		if _, ok := data[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", undefinedErr(name, missing[0]).WithDetail("missing", missing)
	}

	tpl, err := m.build(t, data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		if k := missingKey.FindStringSubmatch(err.Error()); k != nil {
			return "", undefinedErr(name, k[1])
		}
		return "", errors.Wrapf(err, errors.ErrRender, "cannot render %s", name).
			WithDetail("template", name)
	}
	return buf.String(), nil
}

// build parses t with every variable also bound as a niladic function, so
// a bare <@ name @> reads the value. Helper filters are added the first
// time a template calls an unknown function and kept from then on.
func (m *Maker) build(t *templates.Template, data map[string]any) (*template.Template, error) {
	parse := func(withHelpers bool) (*template.Template, error) {
		tpl := template.New(t.Name).
			Delims(templates.LeftDelim, templates.RightDelim).
			Option("missingkey=error")
		if withHelpers {
			tpl = tpl.Funcs(templates.HelperFuncs())
		}
		return tpl.Funcs(valueFuncs(data)).Parse(t.Source)
	}

	m.mu.Lock()
	withHelpers := m.helpers
	m.mu.Unlock()

	tpl, err := parse(withHelpers)
	if err != nil && !withHelpers && undefinedFunc.MatchString(err.Error()) {
		m.mu.Lock()
		m.helpers = true
		m.mu.Unlock()
		m.logger.Debug().Str("template", t.Name).Msg("Enabling helper functions")
		tpl, err = parse(true)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplateParse, "cannot parse template %s", t.Name).
			WithDetail("template", t.Name)
	}
	return tpl, nil
}

// HelpersEnabled reports whether helper functions have been loaded.
func (m *Maker) HelpersEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.helpers
}

func valueFuncs(data map[string]any) template.FuncMap {
	funcs := make(template.FuncMap, len(data))
	for k, v := range data {
		if templates.IsFunc(k) || !funcName.MatchString(k) {
			continue
		}
		v := v
		funcs[k] = func() any { return v }
	}
	return funcs
}

func undefinedErr(template, variable string) *errors.IsnaError {
	return errors.Newf(errors.ErrUndefinedVar, "%s is undefined in template %s", variable, template).
		WithDetail("variable", variable).
		WithDetail("template", template)
}
