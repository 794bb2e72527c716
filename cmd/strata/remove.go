// The remove subcommand: delete one value under a key.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var removeFlags struct {
	key     string
	value   string
	record  int64
	records []int64
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete one value under a key from the selected records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs().Key(removeFlags.key).Value(parseValue(removeFlags.value))
		if cmd.Flags().Changed("record") {
			args.Record(removeFlags.record)
		}
		if cmd.Flags().Changed("records") {
			args.Records(removeFlags.records...)
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		return client.Remove(cmd.Context(), args)
	},
}

func init() {
	removeCmd.Flags().StringVar(&removeFlags.key, "key", "", "key to remove from")
	removeCmd.Flags().StringVar(&removeFlags.value, "value", "", "value literal to remove")
	removeCmd.Flags().Int64Var(&removeFlags.record, "record", 0, "single record to remove from")
	removeCmd.Flags().Int64SliceVar(&removeFlags.records, "records", nil, "records to remove from")
	removeCmd.MarkFlagRequired("key")
	removeCmd.MarkFlagRequired("value")
}
