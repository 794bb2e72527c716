// The get subcommand: most recent value per key.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var getFlags struct {
	sel selectorFlags
	at  timeFlags
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read the most recently added value for each selected key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs()
		getFlags.sel.apply(cmd, args)
		if err := getFlags.at.apply(cmd, args); err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		ds, err := client.Get(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printDataset(ds)
	},
}

func init() {
	addSelectorFlags(getCmd, &getFlags.sel)
	addTimeFlags(getCmd, &getFlags.at)
}
