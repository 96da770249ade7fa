// Package list implements the ls commands: templates on the search path,
// the variables a template reads, and hosts found on the local network.
package list
