// The select subcommand: full value history per key.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var selectFlags struct {
	sel selectorFlags
	at  timeFlags
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Read every stored value for each selected key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs()
		selectFlags.sel.apply(cmd, args)
		if err := selectFlags.at.apply(cmd, args); err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		ds, err := client.Select(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printDataset(ds)
	},
}

func init() {
	addSelectorFlags(selectCmd, &selectFlags.sel)
	addTimeFlags(selectCmd, &selectFlags.at)
}
