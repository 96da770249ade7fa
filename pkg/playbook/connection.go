package playbook

import (
	"os"
	"os/user"

	"github.com/arthur-debert/isna/pkg/types"
)

// CurrentUser returns the login name of the invoking user.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// ConnectionVars returns the ansible variables describing how to reach the
// target and whether to escalate there.
func ConnectionVars(conn types.ConnectionSpec, esc types.EscalationSpec, defaultPort int) map[string]any {
	out := map[string]any{}
	if conn.IsLocal() {
		out["ansible_connection"] = "local"
	} else {
		login := conn.User
		if login == "" {
			login = CurrentUser()
		}
		port := conn.Port
		if port == 0 {
			port = defaultPort
		}
		out["ansible_user"] = login
		out["ansible_port"] = port
	}
	if esc.Requested() {
		out["ansible_become"] = true
		out["ansible_become_method"] = "sudo"
		out["ansible_become_user"] = esc.User
	}
	return out
}

// HostList returns the inventory for a run.
func HostList(conn types.ConnectionSpec, defaultHost string) []string {
	if conn.IsLocal() {
		return []string{defaultHost}
	}
	return []string{conn.Host}
}
