// Package probe decides, with a non-interactive trial run, whether ssh or
// sudo will ask for a password. It is a heuristic used to avoid needless
// prompts; ambiguous outcomes are read as "needs a password".
package probe

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
)

// Result is the outcome of one probe. Statuses are the raw exit codes.
type Result struct {
	Host string

	SSHUser          string
	SSHNeedsPassword bool
	SSHStatus        int
	SSHSuccess       bool

	SudoUser          string
	SudoNeedsPassword bool
	SudoStatus        int
	SudoSuccess       bool
}

// Prober runs trial commands through an executor.
type Prober struct {
	exec   command.Executor
	cfg    config.Probe
	logger zerolog.Logger
}

// New returns a Prober using cfg for binaries and classification.
func New(exec command.Executor, cfg config.Probe) *Prober {
	if cfg.SSHBinary == "" {
		cfg.SSHBinary = "ssh"
	}
	if cfg.SudoBinary == "" {
		cfg.SudoBinary = "sudo"
	}
	if cfg.NoAuthStatus == 0 {
		cfg.NoAuthStatus = 255
	}
	return &Prober{exec: exec, cfg: cfg, logger: logging.GetLogger("probe")}
}

// SSHArgs builds the batch-mode trial command line for ssh.
func (p *Prober) SSHArgs(user, host string, port int, escalateAs string) []string {
	args := []string{
		"-T",
		"-oBatchMode=yes",
		"-oNoHostAuthenticationForLocalhost=yes",
		"-p", strconv.Itoa(port),
	}
	if p.cfg.StrictHostKeyChecking != "" {
		args = append(args, "-oStrictHostKeyChecking="+p.cfg.StrictHostKeyChecking)
	}
	target := host
	if user != "" {
		target = user + "@" + host
	}
	args = append(args, target)
	if escalateAs != "" {
		args = append(args, strings.Join(sudoArgs(p.cfg.SudoBinary, escalateAs), " "))
	}
	return args
}

func sudoArgs(binary, user string) []string {
	return []string{binary, "-u", user, "-n", "whoami"}
}

// ProbeConnection tries to log into host without a password and, when
// escalateAs is set, to run sudo there without one.
//
// Exit 0 means neither needs a password. The no-auth status means ssh
// needs one, unless the diagnostics show a connection failure, which is a
// CONNECTION error. Any other status means ssh got in and sudo refused.
func (p *Prober) ProbeConnection(ctx context.Context, user, host string, port int, escalateAs string) (*Result, error) {
	c := command.Command{Name: p.cfg.SSHBinary, Args: p.SSHArgs(user, host, port, escalateAs)}
	res, err := p.exec.Execute(ctx, c)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProbe, "cannot probe %s", host)
	}

	out := &Result{
		Host:      host,
		SSHUser:   user,
		SSHStatus: res.ExitCode,
		SudoUser:  escalateAs,
	}
	escalate := escalateAs != ""

	switch {
	case res.ExitCode == 0:
		out.SSHSuccess = true
		if escalate {
			out.SudoSuccess = true
		}

	case res.ExitCode == p.cfg.NoAuthStatus:
		if phrase, ok := p.connectionFailure(res.Stderr); ok {
			return nil, errors.Newf(errors.ErrConnection, "cannot connect to %s: %s", host, phrase).
				WithDetail("host", host).
				WithDetail("port", port).
				WithDetail("status", res.ExitCode).
				WithDetail("stderr", strings.TrimSpace(string(res.Stderr)))
		}
		out.SSHNeedsPassword = true
		if escalate {
			// The sudo step never ran; assume it needs a password too.
			out.SudoNeedsPassword = true
			out.SudoStatus = res.ExitCode
		}

	default:
		out.SSHSuccess = true
		out.SSHStatus = 0
		if escalate {
			out.SudoNeedsPassword = true
			out.SudoStatus = res.ExitCode
		}
	}

	p.logger.Info().
		Str("host", host).
		Str("user", user).
		Str("sudo", escalateAs).
		Int("status", res.ExitCode).
		Bool("sshNeedsPassword", out.SSHNeedsPassword).
		Bool("sudoNeedsPassword", out.SudoNeedsPassword).
		Msg("Probed connection")
	return out, nil
}

// ProbeSudo tries sudo locally without a password.
func (p *Prober) ProbeSudo(ctx context.Context, user string) (*Result, error) {
	args := sudoArgs(p.cfg.SudoBinary, user)
	res, err := p.exec.Execute(ctx, command.Command{Name: args[0], Args: args[1:]})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProbe, "cannot probe sudo for %s", user)
	}

	out := &Result{
		Host:              "localhost",
		SudoUser:          user,
		SudoStatus:        res.ExitCode,
		SudoSuccess:       res.ExitCode == 0,
		SudoNeedsPassword: res.ExitCode != 0,
	}
	p.logger.Info().
		Str("sudo", user).
		Int("status", res.ExitCode).
		Bool("sudoNeedsPassword", out.SudoNeedsPassword).
		Msg("Probed local sudo")
	return out, nil
}

func (p *Prober) connectionFailure(stderr []byte) (string, bool) {
	text := string(stderr)
	for _, phrase := range p.cfg.ConnectionFailures {
		if phrase != "" && strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}
