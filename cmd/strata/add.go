// The add subcommand: append a value under a key.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var addFlags struct {
	key     string
	value   string
	record  int64
	records []int64
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a value under a key, into the given records or a fresh one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs().Key(addFlags.key).Value(parseValue(addFlags.value))
		if cmd.Flags().Changed("record") {
			args.Record(addFlags.record)
		}
		if cmd.Flags().Changed("records") {
			args.Records(addFlags.records...)
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		records, err := client.Add(cmd.Context(), args)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(records)
		}
		for _, record := range records {
			fmt.Printf("record %d\n", record)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.key, "key", "", "key to add under")
	addCmd.Flags().StringVar(&addFlags.value, "value", "", "value literal to add")
	addCmd.Flags().Int64Var(&addFlags.record, "record", 0, "single record to add into")
	addCmd.Flags().Int64SliceVar(&addFlags.records, "records", nil, "records to add into")
	addCmd.MarkFlagRequired("key")
	addCmd.MarkFlagRequired("value")
}
