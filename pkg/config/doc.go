// Package config holds isna's static settings: boolean literals, secret
// name markers, template search roots, the external tool binaries and the
// probe and discovery parameters.
//
// Settings are layered with koanf. The embedded defaults.toml comes first,
// then the user's config.toml, then ISNA_ environment variables where a
// double underscore separates nesting levels (ISNA_PROBE__SSH_BINARY sets
// probe.ssh_binary).
package config
