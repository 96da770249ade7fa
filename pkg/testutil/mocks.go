package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/arthur-debert/isna/pkg/command"
)

// MockExecutor is a command.Executor that records every call.
type MockExecutor struct {
	// ExecuteFunc answers a call. When nil every command exits 0 silently.
	ExecuteFunc func(ctx context.Context, c command.Command) (*command.Result, error)

	mu    sync.Mutex
	calls []command.Command
}

// Execute records c and delegates to ExecuteFunc. Captured output is copied
// to the command's passthrough writers when set.
func (m *MockExecutor) Execute(ctx context.Context, c command.Command) (*command.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()

	if m.ExecuteFunc == nil {
		return &command.Result{}, nil
	}
	res, err := m.ExecuteFunc(ctx, c)
	if err != nil || res == nil {
		return res, err
	}
	if c.Stdout != nil && len(res.Stdout) > 0 {
		_, _ = c.Stdout.Write(res.Stdout)
	}
	if c.Stderr != nil && len(res.Stderr) > 0 {
		_, _ = c.Stderr.Write(res.Stderr)
	}
	return res, nil
}

// Calls returns the recorded commands in order.
func (m *MockExecutor) Calls() []command.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]command.Command(nil), m.calls...)
}

// ExitWith returns an ExecuteFunc answering every call with status and
// stderr.
func ExitWith(status int, stderr string) func(context.Context, command.Command) (*command.Result, error) {
	return func(context.Context, command.Command) (*command.Result, error) {
		return &command.Result{ExitCode: status, Stderr: []byte(stderr)}, nil
	}
}

// MockPrompter is a query.Prompter fed from fixed answers.
type MockPrompter struct {
	// Lines answer ReadLine, Passwords answer ReadPassword, in order.
	Lines     []string
	Passwords []string
	// Err, when set, is returned by every read.
	Err error

	Prompts []string
	Out     io.Writer
}

// ReadLine returns the next line answer.
func (m *MockPrompter) ReadLine(prompt string) (string, error) {
	m.record(prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Lines) == 0 {
		return "", fmt.Errorf("no line answer left for %q", prompt)
	}
	line := m.Lines[0]
	m.Lines = m.Lines[1:]
	return line, nil
}

// ReadPassword returns the next password answer.
func (m *MockPrompter) ReadPassword(prompt string) (string, error) {
	m.record(prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Passwords) == 0 {
		return "", fmt.Errorf("no password answer left for %q", prompt)
	}
	pw := m.Passwords[0]
	m.Passwords = m.Passwords[1:]
	return pw, nil
}

// Notify records a diagnostic line shown between prompts.
func (m *MockPrompter) Notify(msg string) {
	m.record("! " + msg)
	if m.Out != nil {
		fmt.Fprintln(m.Out, msg)
	}
}

func (m *MockPrompter) record(prompt string) {
	m.Prompts = append(m.Prompts, prompt)
}
