// Package command runs external programs: ssh and sudo for the credential
// probe, avahi-browse for host discovery and ansible-playbook itself.
package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
)

// Command describes one invocation. Stdin is always closed. When Stdout or
// Stderr is nil that stream is captured into the Result instead.
type Command struct {
	Name   string
	Args   []string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the outcome of a finished command. A non-zero ExitCode is
// not an error.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Executor runs commands. Real is the production implementation.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (*Result, error)
}

// Real runs commands via os/exec.
type Real struct {
	logger zerolog.Logger
}

// NewReal returns an executor for the local system.
func NewReal() *Real {
	return &Real{logger: logging.GetLogger("command")}
}

// Execute starts the command and waits for it. Failing to start, including
// a missing binary, is an EXTERNAL_TOOL error.
func (r *Real) Execute(ctx context.Context, c Command) (*Result, error) {
	logging.LogCommand(r.logger, c.Name, c.Args)
	start := time.Now()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = c.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			return nil, errors.Wrapf(err, errors.ErrExternalTool, "cannot run %s", c.Name).
				WithDetail("command", c.String())
		}
		result.ExitCode = exitErr.ExitCode()
	}

	r.logger.Debug().
		Str("command", c.Name).
		Int("exitCode", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("Command finished")
	return result, nil
}
