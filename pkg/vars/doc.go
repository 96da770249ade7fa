// Package vars holds the variable data model: string coercion, the
// key=value text format read from --vars and piped stdin, and the two-tier
// store that layers values resolved during a run over the base values given
// on the command line.
package vars
