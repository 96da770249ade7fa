package playbook

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
)

// Runner executes rendered playbooks with ansible-playbook.
type Runner struct {
	exec       command.Executor
	fs         afero.Fs
	binary     string
	commonVars map[string]any
	stdout     io.Writer
	stderr     io.Writer
	logger     zerolog.Logger
}

// NewRunner returns a Runner writing its temporary files to fs and passing
// ansible-playbook output through to stdout and stderr.
func NewRunner(exec command.Executor, fs afero.Fs, cfg config.Ansible, stdout, stderr io.Writer) *Runner {
	binary := cfg.PlaybookBinary
	if binary == "" {
		binary = "ansible-playbook"
	}
	return &Runner{
		exec:       exec,
		fs:         fs,
		binary:     binary,
		commonVars: cfg.CommonVars,
		stdout:     stdout,
		stderr:     stderr,
		logger:     logging.GetLogger("playbook.runner"),
	}
}

// ExtraVars returns the variables handed to ansible: the common vars with
// vars laid over them.
func (r *Runner) ExtraVars(vars map[string]any) map[string]any {
	out := make(map[string]any, len(r.commonVars)+len(vars))
	for k, v := range r.commonVars {
		out[k] = v
	}
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// Run writes doc and vars to temporary files, runs ansible-playbook against
// hosts and returns its exit status. The files are removed before Run
// returns.
func (r *Runner) Run(ctx context.Context, doc string, hosts []string, vars map[string]any) (int, error) {
	payload, err := json.Marshal(r.ExtraVars(vars))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrInternal, "cannot encode playbook variables")
	}

	docPath, err := r.writeTemp("isna-*.yml", []byte(doc))
	if err != nil {
		return 0, err
	}
	defer r.remove(docPath)

	varsPath, err := r.writeTemp("isna-*.json", payload)
	if err != nil {
		return 0, err
	}
	defer r.remove(varsPath)

	cmd := command.Command{
		Name:   r.binary,
		Args:   []string{docPath, "-i", strings.Join(hosts, ",") + ",", "-e", "@" + varsPath},
		Stdout: r.stdout,
		Stderr: r.stderr,
	}
	r.logger.Info().Strs("hosts", hosts).Str("playbook", docPath).Msg("Running playbook")

	res, err := r.exec.Execute(ctx, cmd)
	if err != nil {
		return 0, err
	}
	r.logger.Info().Int("exitCode", res.ExitCode).Msg("Playbook finished")
	return res.ExitCode, nil
}

func (r *Runner) writeTemp(pattern string, content []byte) (string, error) {
	f, err := afero.TempFile(r.fs, "", pattern)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileCreate, "cannot create temporary file")
	}
	name := f.Name()
	if err := r.fs.Chmod(name, 0600); err != nil {
		_ = f.Close()
		r.remove(name)
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot restrict %s", name)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		r.remove(name)
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", name)
	}
	if err := f.Close(); err != nil {
		r.remove(name)
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", name)
	}
	return name, nil
}

func (r *Runner) remove(path string) {
	if err := r.fs.Remove(path); err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("Cannot remove temporary file")
	}
}
