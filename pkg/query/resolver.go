package query

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
	"github.com/arthur-debert/isna/pkg/vars"
)

const (
	promptBegin = "Enter "
	promptEnd   = "ᐅ "
	repeatLabel = "Repeat "
)

// Result is one resolved variable. Raw is the text entered or read, before
// any default or transform was applied.
type Result struct {
	Name  string
	Value any
	Raw   string
}

// Options tune a single Query.
type Options struct {
	// Default is used when the answer is empty or, when piped, absent.
	Default any
	// Choices restricts the value; compared against fmt.Sprint(value).
	Choices []string
	// Prompt replaces the generated prompt.
	Prompt string
	// Hide disables echo. Implied for secret names.
	Hide bool
	// Repeat asks for the value twice. Implied for secret names.
	Repeat bool
	// AllowEmpty accepts an empty answer instead of asking again.
	AllowEmpty bool
	// Transform maps the answer before validation.
	Transform func(any) any
}

// Settings configure a Resolver. Stdin is read only when not Interactive.
type Settings struct {
	Interactive bool
	Prompter    Prompter
	Stdin       io.Reader
	Secrets     config.Secrets
	Input       config.Input
}

// Resolver collects variable values for one run.
type Resolver struct {
	settings Settings
	logger   zerolog.Logger

	once     sync.Once
	piped    map[string]any
	pipedErr error

	data map[string]any
}

// New returns a resolver using settings as given.
func New(settings Settings) *Resolver {
	if settings.Input.KVSeparator == "" {
		settings.Input.KVSeparator = vars.DefaultKVSeparator
	}
	if settings.Input.PairSeparator == "" {
		settings.Input.PairSeparator = vars.DefaultPairSeparator
	}
	return &Resolver{
		settings: settings,
		logger:   logging.GetLogger("query"),
		data:     map[string]any{},
	}
}

// NewForProcess picks the mode from whether stdin is a terminal. Prompts go
// to stderr.
func NewForProcess(cfg *config.Config) *Resolver {
	fd := os.Stdin.Fd()
	interactive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return New(Settings{
		Interactive: interactive,
		Prompter:    NewTerminal(os.Stdin, os.Stderr),
		Stdin:       os.Stdin,
		Secrets:     cfg.Secrets,
		Input:       cfg.Input,
	})
}

// Interactive reports the mode chosen at construction.
func (r *Resolver) Interactive() bool {
	return r.settings.Interactive
}

// Data returns a copy of everything resolved so far.
func (r *Resolver) Data() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}

// Query resolves name.
func (r *Resolver) Query(ctx context.Context, name string, opts Options) (Result, error) {
	var (
		res Result
		err error
	)
	if r.settings.Interactive {
		res, err = r.ask(ctx, name, opts)
	} else {
		res, err = r.lookup(name, opts)
	}
	if err != nil {
		return Result{}, err
	}

	r.data[name] = res.Value
	r.logger.Debug().
		Str("name", name).
		Bool("secret", r.settings.Secrets.IsSecret(name)).
		Msg("Resolved variable")
	return res, nil
}

// QueryAll resolves names in sorted order with default options.
func (r *Resolver) QueryAll(ctx context.Context, names []string) ([]Result, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	results := make([]Result, 0, len(sorted))
	for _, name := range sorted {
		res, err := r.Query(ctx, name, Options{})
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Resolver) ask(ctx context.Context, name string, opts Options) (Result, error) {
	secret := r.settings.Secrets.IsSecret(name)
	hide := opts.Hide || secret
	repeat := opts.Repeat || secret
	prompt := BuildPrompt(name, opts)

	for {
		raw, err := r.read(ctx, name, prompt, hide)
		if err != nil {
			return Result{}, err
		}
		if repeat {
			again, err := r.read(ctx, name, repeatLabel+prompt, hide)
			if err != nil {
				return Result{}, err
			}
			if subtle.ConstantTimeCompare([]byte(raw), []byte(again)) != 1 {
				return Result{}, errors.Newf(errors.ErrResolverValidation, "the two entries for %s do not match", name).
					WithDetail("variable", name)
			}
		}

		var value any = raw
		if raw == "" && !opts.AllowEmpty {
			if opts.Default == nil {
				continue
			}
			value = opts.Default
		}
		value = transform(opts, value)

		if !allowed(opts.Choices, value) {
			r.settings.Prompter.Notify(fmt.Sprintf("%v is not in %v", value, opts.Choices))
			continue
		}
		return Result{Name: name, Value: value, Raw: raw}, nil
	}
}

// read runs one blocking prompt, abandoning it when ctx is cancelled.
func (r *Resolver) read(ctx context.Context, name, prompt string, hide bool) (string, error) {
	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		var a answer
		if hide {
			a.text, a.err = r.settings.Prompter.ReadPassword(prompt)
		} else {
			a.text, a.err = r.settings.Prompter.ReadLine(prompt)
		}
		ch <- a
	}()

	select {
	case <-ctx.Done():
		if rs, ok := r.settings.Prompter.(interface{ Restore() }); ok {
			rs.Restore()
		}
		return "", errors.Wrapf(ctx.Err(), errors.ErrResolverInput, "input cancelled for %s", name).
			WithDetail("variable", name)
	case a := <-ch:
		if a.err == nil {
			return a.text, nil
		}
		if stderrors.Is(a.err, ErrInterrupted) {
			return "", errors.Newf(errors.ErrResolverInput, "received Ctrl-C while reading %s", name).
				WithDetail("variable", name)
		}
		return "", errors.Wrapf(a.err, errors.ErrResolverInput, "cannot read %s", name).
			WithDetail("variable", name)
	}
}

func (r *Resolver) lookup(name string, opts Options) (Result, error) {
	r.once.Do(r.loadStdin)
	if r.pipedErr != nil {
		return Result{}, errors.Wrapf(r.pipedErr, errors.ErrResolverInput, "cannot read stdin for %s", name).
			WithDetail("variable", name)
	}

	raw, ok := r.piped[name]
	value := raw
	if !ok {
		if opts.Default == nil {
			return Result{}, errors.Newf(errors.ErrResolverInput, "The key %s was not given to stdin", name).
				WithDetail("variable", name)
		}
		value = opts.Default
	}
	value = transform(opts, value)

	if !allowed(opts.Choices, value) {
		return Result{}, errors.Newf(errors.ErrResolverValidation, "%v is not in %v", value, opts.Choices).
			WithDetail("variable", name)
	}

	rawText := ""
	if ok {
		rawText = fmt.Sprint(raw)
	}
	return Result{Name: name, Value: value, Raw: rawText}, nil
}

func (r *Resolver) loadStdin() {
	if r.settings.Stdin == nil {
		r.piped = map[string]any{}
		return
	}
	data, err := io.ReadAll(r.settings.Stdin)
	if err != nil {
		r.pipedErr = err
		return
	}
	r.piped = vars.ParseWith(string(data), r.settings.Input.KVSeparator, r.settings.Input.PairSeparator)
	r.logger.Debug().Int("keys", len(r.piped)).Msg("Read variables from stdin")
}

// BuildPrompt renders "Enter NAME (default: D) (choices: [a b])ᐅ ". An
// explicit Options.Prompt is returned unchanged.
func BuildPrompt(name string, opts Options) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	var b strings.Builder
	b.WriteString(promptBegin)
	b.WriteString(name)
	if opts.Default != nil {
		fmt.Fprintf(&b, " (default: %v)", opts.Default)
	}
	if opts.Choices != nil {
		fmt.Fprintf(&b, " (choices: %v)", opts.Choices)
	}
	b.WriteString(promptEnd)
	return b.String()
}

func transform(opts Options, v any) any {
	if opts.Transform == nil {
		return v
	}
	return opts.Transform(v)
}

func allowed(choices []string, v any) bool {
	if choices == nil {
		return true
	}
	s := fmt.Sprint(v)
	for _, c := range choices {
		if c == s {
			return true
		}
	}
	return false
}
