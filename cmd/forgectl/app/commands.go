// Package app provides the entry point for the forgectl command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appforge-io/forgectl/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "forgectl",
	DisableAutoGenTag: true,
	Short:             "forgectl manages apps, functions, and accounts on the AppForge platform",
	Long: `forgectl is the administration CLI for the AppForge platform.

It configures apps and linked accounts for a project, converts OpenAPI
documents into function definitions, manages API keys and MCP servers,
and inspects execution logs, usage analytics, and quota.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Re-initialize the logger so the --debug flag takes effect.
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the forgectl CLI.
func NewRootCmd() *cobra.Command {
	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	// Bind to viper
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newAuthCommand(),
		newConfigCommand(),
		newAppsCommand(),
		newAppConfigsCommand(),
		newAccountsCommand(),
		newFunctionsCommand(),
		newKeysCommand(),
		newMCPCommand(),
		newLogsCommand(),
		newAnalyticsCommand(),
		newQuotaCommand(),
		newCatalogCommand(),
		newVersionCommand(),
	)

	return rootCmd
}
