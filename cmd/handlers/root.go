package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "policybrief",
		Short: "policybrief curates daily editions of policy news with AI impact analyses.",
		Long: `policybrief fetches policy-related news, ranks and deduplicates the
candidates, generates validated impact analyses for the top stories and
persists the result as a dated, issue-numbered edition.

Typical usage:
  policybrief migrate                 # apply database schema
  policybrief curate                  # curate today's edition
  policybrief curate --date 2026-08-29 --force
  policybrief show --date 2026-08-29  # inspect an edition
  policybrief serve                   # serve editions to the frontend`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.policybrief.yaml)")

	rootCmd.AddCommand(NewCurateCmd())
	rootCmd.AddCommand(NewResetCmd())
	rootCmd.AddCommand(NewPublishCmd())
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
