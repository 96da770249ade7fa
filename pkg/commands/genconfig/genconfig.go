package genconfig

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
	"github.com/arthur-debert/isna/pkg/types"
)

// GenConfigOptions holds options for the config command
type GenConfigOptions struct {
	// Config is the effective configuration; nil means the built-in one.
	Config *config.Config
	// Write saves the configuration to Path instead of only returning it.
	Write bool
	// Path defaults to the user configuration file.
	Path       string
	FileSystem afero.Fs
}

// GenConfig renders the configuration as TOML and optionally writes it.
// An existing file is never overwritten.
func GenConfig(opts GenConfigOptions) (*types.GenConfigResult, error) {
	logger := logging.GetLogger("commands.genconfig")

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	content, err := config.Generate(cfg)
	if err != nil {
		return nil, err
	}
	result := &types.GenConfigResult{ConfigContent: string(content)}

	if !opts.Write {
		logger.Debug().Msg("Outputting config to stdout")
		return result, nil
	}

	fs := opts.FileSystem
	if fs == nil {
		fs = afero.NewOsFs()
	}
	path := opts.Path
	if path == "" {
		path = config.UserConfigPath()
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot check %s", path)
	}
	if exists {
		logger.Warn().Str("path", path).Msg("Config file already exists, skipping")
		return result, nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileCreate, "cannot create directory for %s", path)
	}
	if err := afero.WriteFile(fs, path, content, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot write config to %s", path)
	}

	logger.Info().Str("path", path).Msg("Written config file")
	result.FileWritten = path
	return result, nil
}
