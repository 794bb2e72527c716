// The version subcommand.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the strata version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagJSON {
			return printJSON(map[string]string{"version": strata.Version})
		}
		fmt.Fprintln(cmd.OutOrStdout(), strata.Version)
		return nil
	},
}
