// Package query resolves variable values, either by asking the user on a
// terminal or, when stdin is not a terminal, by looking them up in a block
// of key=value or JSON text read from stdin once.
//
// Every resolved value is kept in the resolver's own mapping so later
// stages, such as password assembly, see everything resolved in the run.
// A Resolver is not safe for concurrent use.
package query
