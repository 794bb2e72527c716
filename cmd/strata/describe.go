// The describe subcommand: keys holding data in a record.
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
)

var describeFlags struct {
	record  int64
	records []int64
	at      timeFlags
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "List the keys holding data in the selected records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs()
		if cmd.Flags().Changed("record") {
			args.Record(describeFlags.record)
		}
		if cmd.Flags().Changed("records") {
			args.Records(describeFlags.records...)
		}
		if err := describeFlags.at.apply(cmd, args); err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		byRecord, err := client.Describe(cmd.Context(), args)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(byRecord)
		}
		records := make([]int64, 0, len(byRecord))
		for record := range byRecord {
			records = append(records, record)
		}
		sort.Slice(records, func(i, j int) bool { return records[i] < records[j] })
		for _, record := range records {
			fmt.Printf("record %d: %s\n", record, strings.Join(byRecord[record], ", "))
		}
		return nil
	},
}

func init() {
	describeCmd.Flags().Int64Var(&describeFlags.record, "record", 0, "single record to describe")
	describeCmd.Flags().Int64SliceVar(&describeFlags.records, "records", nil, "records to describe")
	addTimeFlags(describeCmd, &describeFlags.at)
}
