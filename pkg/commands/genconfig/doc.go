// Package genconfig implements the config command: print the effective
// configuration as TOML, or save it as the user's configuration file.
package genconfig
