// Shared helpers for the strata CLI subcommands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/strata"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// newClient connects to the configured server and logs in.
func newClient(ctx context.Context) (*strata.Client, error) {
	return strata.New(ctx, types.Config{
		Address:     cliConfig.Address,
		Username:    cliConfig.Username,
		Password:    cliConfig.Password,
		Environment: cliConfig.Environment,
	})
}

// selectorFlags carries the flags shared by the read-style subcommands.
type selectorFlags struct {
	key      string
	keys     []string
	record   int64
	records  []int64
	criteria string
}

// addSelectorFlags registers the shared selector flags on cmd.
func addSelectorFlags(cmd *cobra.Command, f *selectorFlags) {
	cmd.Flags().StringVar(&f.key, "key", "", "single key to operate on")
	cmd.Flags().StringSliceVar(&f.keys, "keys", nil, "keys to operate on")
	cmd.Flags().Int64Var(&f.record, "record", 0, "single record to operate on")
	cmd.Flags().Int64SliceVar(&f.records, "records", nil, "records to operate on")
	cmd.Flags().StringVar(&f.criteria, "criteria", "", "criteria selecting records")
}

// apply copies the set selector flags onto args. Exclusivity and
// completeness are the resolver's job, not the flag layer's.
func (f selectorFlags) apply(cmd *cobra.Command, args *strata.Args) {
	if cmd.Flags().Changed("key") {
		args.Key(f.key)
	}
	if cmd.Flags().Changed("keys") {
		args.Keys(f.keys...)
	}
	if cmd.Flags().Changed("record") {
		args.Record(f.record)
	}
	if cmd.Flags().Changed("records") {
		args.Records(f.records...)
	}
	if cmd.Flags().Changed("criteria") {
		args.Criteria(f.criteria)
	}
}

// timeFlags carries the single-instant flags used by get, select, and
// describe.
type timeFlags struct {
	time    int64
	timestr string
}

func addTimeFlags(cmd *cobra.Command, f *timeFlags) {
	cmd.Flags().Int64Var(&f.time, "time", 0, "read as of this instant (microseconds since epoch)")
	cmd.Flags().StringVar(&f.timestr, "timestr", "", "read as of this instant (natural-language phrase)")
}

func (f timeFlags) apply(cmd *cobra.Command, args *strata.Args) error {
	if cmd.Flags().Changed("time") && cmd.Flags().Changed("timestr") {
		return fmt.Errorf("--time and --timestr are mutually exclusive")
	}
	if cmd.Flags().Changed("time") {
		args.Time(types.Micros(f.time))
	}
	if cmd.Flags().Changed("timestr") {
		args.Time(types.Phrase(f.timestr))
	}
	return nil
}

// parseValue interprets a CLI value literal: true/false, @N links,
// integers, floats, and everything else as a string.
func parseValue(s string) types.Value {
	switch s {
	case "true":
		return types.Bool(true)
	case "false":
		return types.Bool(false)
	}
	if strings.HasPrefix(s, "@") {
		if n, err := strconv.ParseInt(s[1:], 10, 64); err == nil {
			return types.LinkTo(n)
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return types.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return types.Float(f)
	}
	return types.String(s)
}

// printDataset renders a dataset as JSON or as record/key/value lines.
func printDataset(ds types.Dataset) error {
	if flagJSON {
		return printJSON(datasetNative(ds))
	}
	for _, record := range ds.Records() {
		fmt.Printf("record %d\n", record)
		keys := make([]string, 0, len(ds[record]))
		for key := range ds[record] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, v := range ds[record][key] {
				fmt.Printf("  %s = %s\n", key, v)
			}
		}
	}
	return nil
}

// datasetNative converts a dataset to plain Go values for JSON output.
func datasetNative(ds types.Dataset) map[int64]map[string][]any {
	out := make(map[int64]map[string][]any, len(ds))
	for record, byKey := range ds {
		out[record] = make(map[string][]any, len(byKey))
		for key, vals := range byKey {
			natives := make([]any, len(vals))
			for i, v := range vals {
				natives[i] = v.Native()
			}
			out[record][key] = natives
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
