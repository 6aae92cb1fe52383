package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "ledger-server",
		Short:         "ledger-server records deposits, withdrawals and transfers between accounts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml if present)")

	rootCmd.AddCommand(newServeCmd(&cfgFile))
	rootCmd.AddCommand(newMigrateCmd(&cfgFile))

	return rootCmd
}
