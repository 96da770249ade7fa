package isna

import (
	"embed"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/isna/pkg/cobrax/topics"
)

//go:embed topics/*.md
var helpTopics embed.FS

// initHelpTopics replaces the help command with one that also serves the
// embedded topics. Help without topics still works if this fails.
func initHelpTopics(rootCmd *cobra.Command) {
	sub, err := fs.Sub(helpTopics, "topics")
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	opts := topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(!stdoutIsTerminal()),
	}
	if _, err := topics.InitializeWithOptions(rootCmd, sub, opts); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}
}
