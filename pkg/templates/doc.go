// Package templates finds, loads and statically analyzes playbook
// templates.
//
// Templates use Go template syntax with <@ and @> as delimiters. They are
// looked up across an ordered list of search roots; the first root holding a
// name wins. A root is either a directory or a folder inside a registered
// package filesystem, such as the playbooks bundled with the binary.
package templates
