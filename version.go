package graphql

import (
	"fmt"
	"runtime"
)

// Build metadata. GitCommit and BuildDate are meant to be set with
// -ldflags "-X github.com/crossroads-loyalty-solutions/graphql-client.GitCommit=...".
var (
	Version   = "v0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// GetVersion is the one-line form printed by `gqlclient version`.
func GetVersion() string {
	return fmt.Sprintf("graphql-client %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, GoVersion)
}

// GetVersionInfo keys the build metadata by the label names of the
// graphql_client_build_info metric.
func GetVersionInfo() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
		"go_version": GoVersion,
	}
}
