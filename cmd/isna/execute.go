package isna

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/ui"
	"github.com/arthur-debert/isna/pkg/ui/styles"
)

// Execute runs the command line in os.Args and returns the process exit
// status: the failed playbook's status after a run, 1 for any other error.
func Execute(ctx context.Context) int {
	rootCmd, a := newRoot(Deps{})
	err := rootCmd.ExecuteContext(ctx)
	return a.exitStatus(err, os.Stdout, os.Stderr)
}

// exitStatus reports err and maps it to an exit status. JSON output gets
// the error as JSON on stdout; otherwise it goes to stderr, styled when
// stderr is a terminal.
func (a *app) exitStatus(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	if ui.Resolve(a.format, stdout) == ui.FormatJSON {
		if renderer, rerr := ui.NewRenderer(ui.FormatJSON, stdout); rerr == nil {
			_ = renderer.RenderError(err)
			return 1
		}
	}
	msg := "Error: " + errors.Describe(err)
	if f, ok := stderr.(*os.File); ok && ui.DetectFormat(f) == ui.FormatTerminal {
		msg = styles.GetStyle("Error").Render(msg)
	}
	fmt.Fprintln(stderr, msg)
	return 1
}
