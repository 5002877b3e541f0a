// Command gqlclient sends GraphQL queries, batched by default, and prints one
// JSON result per query.
package main

import (
	"os"

	"github.com/crossroads-loyalty-solutions/graphql-client/cmd/gqlclient/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
