package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "rentledger",
	Short: "Rent invoice ledger and schedule engine",
	Long: `rentledger generates monthly rent invoice schedules, tracks each invoice
through approval, delivery and payment, and runs the automated send and
reminder jobs.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}
