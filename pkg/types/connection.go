package types

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/arthur-debert/isna/pkg/errors"
)

// ConnectionSpec is the --ssh target. An empty Host means a local run.
// User and Port are optional; zero values mean "use the default".
type ConnectionSpec struct {
	User string
	Host string
	Port int
}

// IsLocal reports whether no remote host was given.
func (c ConnectionSpec) IsLocal() bool {
	return c.Host == ""
}

func (c ConnectionSpec) String() string {
	if c.IsLocal() {
		return "local"
	}
	s := c.Host
	if c.User != "" {
		s = c.User + "@" + s
	}
	if c.Port != 0 {
		s = fmt.Sprintf("%s:%d", s, c.Port)
	}
	return s
}

// EscalationSpec is the --sudo target. An empty User means no escalation.
type EscalationSpec struct {
	User string
}

// Requested reports whether escalation was asked for.
func (e EscalationSpec) Requested() bool {
	return e.User != ""
}

var sshPattern = regexp.MustCompile(`^(?:([A-Za-z_][\w.-]*)@)?([A-Za-z0-9_.-]+)(?::([0-9]{1,5}))?$`)

// ParseConnection reads [user@]host[:port]. An empty string is a local run.
func ParseConnection(s string) (ConnectionSpec, error) {
	if s == "" {
		return ConnectionSpec{}, nil
	}
	m := sshPattern.FindStringSubmatch(s)
	if m == nil {
		return ConnectionSpec{}, errors.Newf(errors.ErrUsage,
			"invalid --ssh value %q, expected [user@]host[:port]", s)
	}
	spec := ConnectionSpec{User: m[1], Host: m[2]}
	if m[3] != "" {
		port, _ := strconv.Atoi(m[3])
		if port < 1 || port > 65535 {
			return ConnectionSpec{}, errors.Newf(errors.ErrUsage, "port %d in --ssh is out of range", port)
		}
		spec.Port = port
	}
	return spec, nil
}
