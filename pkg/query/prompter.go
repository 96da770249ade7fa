package query

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// ErrInterrupted is returned by a Prompter when the user aborts input.
var ErrInterrupted = stderrors.New("input interrupted")

// Prompter reads answers from a human.
type Prompter interface {
	// ReadLine shows prompt and reads one echoed line.
	ReadLine(prompt string) (string, error)
	// ReadPassword shows prompt and reads one line without echo.
	ReadPassword(prompt string) (string, error)
	// Notify shows a diagnostic between prompts.
	Notify(msg string)
}

// Terminal prompts on a tty. Prompts and diagnostics go to out so stdout
// stays clean.
type Terminal struct {
	in  *os.File
	out io.Writer

	mu    sync.Mutex
	saved *term.State
}

// NewTerminal returns a prompter reading from in.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// ReadLine reads with line editing. Ctrl-C and Ctrl-D give ErrInterrupted.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.save()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		Stdin:           t.in,
		Stdout:          t.out,
		Stderr:          t.out,
	})
	if err != nil {
		return "", fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt || err == io.EOF {
			return "", ErrInterrupted
		}
		return "", err
	}
	return line, nil
}

// ReadPassword reads with echo disabled.
func (t *Terminal) ReadPassword(prompt string) (string, error) {
	t.save()
	fmt.Fprint(t.out, prompt)
	pw, err := term.ReadPassword(int(t.in.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		if err == io.EOF {
			return "", ErrInterrupted
		}
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// Notify prints msg on its own line.
func (t *Terminal) Notify(msg string) {
	fmt.Fprintln(t.out, msg)
}

// Restore puts the tty back in the mode it had before the last read
// started. Used when a read is abandoned on cancellation.
func (t *Terminal) Restore() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved != nil {
		_ = term.Restore(int(t.in.Fd()), t.saved)
	}
}

func (t *Terminal) save() {
	state, err := term.GetState(int(t.in.Fd()))
	if err != nil {
		return
	}
	t.mu.Lock()
	t.saved = state
	t.mu.Unlock()
}
