package main

import (
	"github.com/smallbiznis/rentledger/internal/app"
	"github.com/smallbiznis/rentledger/internal/migration"
	"github.com/smallbiznis/rentledger/internal/scheduler"
	"github.com/smallbiznis/rentledger/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduler in one process",
	Example: `  # Serve with the scheduler
  rentledger serve

  # Serve the API only
  SCHEDULER_ENABLED=false rentledger serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx.New(
			app.Core,
			migration.Module,
			server.Module,
			scheduler.Module,
		).Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
