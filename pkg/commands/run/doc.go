// Package run implements the run command: resolve, render, probe and
// execute one or more playbook templates.
package run
