// Package hosts lists machines announced on the local network through
// mDNS, as reported by avahi-browse.
package hosts

import (
	"bufio"
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/logging"
)

// Discover runs the discovery command and returns every ;-separated field
// ending in domain, sorted and deduplicated.
func Discover(ctx context.Context, exec command.Executor, cfg config.Discovery, domain string) ([]string, error) {
	logger := logging.GetLogger("hosts")
	if domain == "" {
		domain = cfg.Domain
	}

	res, err := exec.Execute(ctx, command.Command{Name: cfg.Command, Args: cfg.Args})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDiscovery, "cannot run %s", cfg.Command)
	}
	if res.ExitCode != 0 {
		return nil, errors.Newf(errors.ErrDiscovery, "%s exited with status %d", cfg.Command, res.ExitCode).
			WithDetail("stderr", strings.TrimSpace(string(res.Stderr)))
	}

	found := Parse(res.Stdout, domain)
	logger.Debug().Str("domain", domain).Int("count", len(found)).Msg("Discovered hosts")
	return found, nil
}

// Parse extracts host names ending in domain from avahi-browse -p output.
func Parse(output []byte, domain string) []string {
	seen := map[string]bool{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		for _, field := range strings.Split(scanner.Text(), ";") {
			field = strings.TrimSpace(field)
			if field != "" && field != domain && strings.HasSuffix(field, domain) {
				seen[field] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
