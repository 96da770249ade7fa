package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/isna/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/isna/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/isna/internal/version.Date={{.Date}}
)

// String describes the build on one line.
func String() string {
	return Version + " (commit " + Commit + ", built " + Date + ")"
}
