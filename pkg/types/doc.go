// Package types holds the small value types shared between the command
// line, the credential probe and the playbook runner.
package types
