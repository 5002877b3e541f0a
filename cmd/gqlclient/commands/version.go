package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	graphql "github.com/crossroads-loyalty-solutions/graphql-client"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), graphql.GetVersion())
			return err
		},
	}
}
