// Package testutil provides helpers shared by isna's tests: file fixtures
// and doubles for the command executor and the terminal prompter.
//
// Doubles follow the XxxFunc convention: set the func field to control
// behavior, read the recorded calls to assert on what happened.
package testutil
