// Root command for the strata CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/paths"
	"github.com/mesh-intelligence/strata/pkg/strata"
)

// Global flag values. Connection flags override config.yaml.
var (
	flagConfigDir   string
	flagAddress     string
	flagEnvironment string
	flagUsername    string
	flagPassword    string
	flagJSON        bool
)

// cliConfig holds the connection settings resolved from flags and
// config.yaml. Set by PersistentPreRunE so all subcommands can use it.
var cliConfig connConfig

var rootCmd = &cobra.Command{
	Use:     "strata",
	Short:   "Strata is a client for a schemaless, time-versioned record store",
	Version: strata.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		cliConfig = resolveConn(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.strata)")
	rootCmd.PersistentFlags().StringVar(&flagAddress, "address", "", "server address (default: "+defaultAddress+")")
	rootCmd.PersistentFlags().StringVar(&flagEnvironment, "environment", "", "environment to operate in (default: default)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "username for the login handshake")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "password for the login handshake")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(serveCmd)
}
