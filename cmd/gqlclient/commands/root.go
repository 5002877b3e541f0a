// Package commands implements the gqlclient command tree.
//
// gqlclient sends GraphQL query documents to an endpoint through the batching
// client by default, so several documents given on one command line travel in
// a single HTTP request.
package commands

import (
	"github.com/spf13/cobra"

	graphql "github.com/crossroads-loyalty-solutions/graphql-client"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	endpoint   string
	timeout    string
	verbose    bool
}

// NewRootCmd builds a fresh command tree. Each call returns independent flag
// state so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "gqlclient",
		Short: "Send batched GraphQL queries from the command line",
		Long: `gqlclient posts GraphQL query documents to an endpoint.

Documents given together are debounced into one JSON-array request and their
results are printed one JSON object per line, in argument order.`,
		SilenceUsage: true,
		Version:      graphql.Version,
		Example: `  # Two queries, one HTTP request
  gqlclient query --endpoint http://localhost:4000/graphql '{ a }' '{ b }'

  # With variables
  gqlclient query -e http://localhost:4000/graphql --vars '{"id":1}' 'query($id: Int) { user(id: $id) { name } }'

  # Settings from a file
  gqlclient --config gqlclient.yaml query '{ viewer { id } }'`,
	}

	setupGlobalFlags(root, flags)

	root.AddCommand(newQueryCmd(flags))
	root.AddCommand(newVersionCmd())

	return root
}

func setupGlobalFlags(root *cobra.Command, flags *globalFlags) {
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"YAML configuration file")
	root.PersistentFlags().StringVarP(&flags.endpoint, "endpoint", "e", "",
		"GraphQL endpoint URL")
	root.PersistentFlags().StringVar(&flags.timeout, "timeout", "",
		"HTTP timeout, e.g. 10s (default 30s)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"Log queries, batches and cache activity to stderr")
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
