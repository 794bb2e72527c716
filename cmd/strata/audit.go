// The audit subcommand: change history of a record.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
	"github.com/mesh-intelligence/strata/pkg/types"
)

var auditFlags struct {
	record   int64
	key      string
	start    int64
	startstr string
	end      int64
	endstr   string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the change history of a record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := strata.NewArgs().Record(auditFlags.record)
		if cmd.Flags().Changed("key") {
			args.Key(auditFlags.key)
		}
		if cmd.Flags().Changed("start") && cmd.Flags().Changed("startstr") {
			return fmt.Errorf("--start and --startstr are mutually exclusive")
		}
		if cmd.Flags().Changed("end") && cmd.Flags().Changed("endstr") {
			return fmt.Errorf("--end and --endstr are mutually exclusive")
		}
		if cmd.Flags().Changed("start") {
			args.Start(types.Micros(auditFlags.start))
		}
		if cmd.Flags().Changed("startstr") {
			args.Start(types.Phrase(auditFlags.startstr))
		}
		if cmd.Flags().Changed("end") {
			args.End(types.Micros(auditFlags.end))
		}
		if cmd.Flags().Changed("endstr") {
			args.End(types.Phrase(auditFlags.endstr))
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		entries, err := client.Audit(cmd.Context(), args)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(entries)
		}
		for _, entry := range entries {
			at := time.UnixMicro(entry.Timestamp).UTC().Format(time.RFC3339)
			fmt.Printf("%s  %s\n", at, entry.Description)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Int64Var(&auditFlags.record, "record", 0, "record to audit")
	auditCmd.Flags().StringVar(&auditFlags.key, "key", "", "narrow the history to one key")
	auditCmd.Flags().Int64Var(&auditFlags.start, "start", 0, "history from this instant (microseconds since epoch)")
	auditCmd.Flags().StringVar(&auditFlags.startstr, "startstr", "", "history from this instant (natural-language phrase)")
	auditCmd.Flags().Int64Var(&auditFlags.end, "end", 0, "history before this instant (microseconds since epoch)")
	auditCmd.Flags().StringVar(&auditFlags.endstr, "endstr", "", "history before this instant (natural-language phrase)")
	auditCmd.MarkFlagRequired("record")
}
