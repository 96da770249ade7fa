package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/isna/pkg/errors"
)

// Generate renders cfg as TOML, in a form Load accepts back.
func Generate(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return out, nil
}
