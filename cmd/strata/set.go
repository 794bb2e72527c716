// The set subcommand: replace all values under a key.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var setFlags struct {
	key      string
	value    string
	record   int64
	records  []int64
	criteria string
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace every value under a key in the selected records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs().Key(setFlags.key).Value(parseValue(setFlags.value))
		if cmd.Flags().Changed("record") {
			args.Record(setFlags.record)
		}
		if cmd.Flags().Changed("records") {
			args.Records(setFlags.records...)
		}
		if cmd.Flags().Changed("criteria") {
			args.Criteria(setFlags.criteria)
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		return client.Set(cmd.Context(), args)
	},
}

func init() {
	setCmd.Flags().StringVar(&setFlags.key, "key", "", "key to set")
	setCmd.Flags().StringVar(&setFlags.value, "value", "", "value literal to set")
	setCmd.Flags().Int64Var(&setFlags.record, "record", 0, "single record to set in")
	setCmd.Flags().Int64SliceVar(&setFlags.records, "records", nil, "records to set in")
	setCmd.Flags().StringVar(&setFlags.criteria, "criteria", "", "criteria selecting records")
	setCmd.MarkFlagRequired("key")
	setCmd.MarkFlagRequired("value")
}
