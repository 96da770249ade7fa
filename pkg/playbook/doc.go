// Package playbook turns templates into ansible playbooks and runs them.
//
// Maker renders a template strictly: every variable the template reads must
// have a value, or rendering fails naming the first missing one. Runner
// hands the rendered document and its variables to ansible-playbook through
// two owner-only temporary files that are removed afterwards.
package playbook
