// The serve subcommand: run the embedded development server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/paths"
	"github.com/mesh-intelligence/strata/pkg/server"
)

var serveFlags struct {
	listen  string
	dataDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the embedded SQLite-backed development server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dataDir, err := paths.ResolveDataDir(serveFlags.dataDir, cliConfig.DataDir)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return fmt.Errorf("ensure data dir: %w", err)
		}

		srv, err := server.New(server.Config{DataDir: dataDir})
		if err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe(serveFlags.listen) }()
		fmt.Fprintf(cmd.OutOrStdout(), "strata server listening on %s (data dir %s)\n", serveFlags.listen, dataDir)

		select {
		case err := <-errc:
			return err
		case <-stop:
			return srv.Stop()
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", defaultAddress, "address to listen on")
	serveCmd.Flags().StringVar(&serveFlags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.strata-db)")
}
