// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dealerdesk",
	Short: "DealerDesk is a web-based dealer outreach template manager",
	Long: `DealerDesk is a small web service that stores outreach letter
templates and dealer records and renders templates against a dealer
by substituting {{PLACEHOLDER}} tokens.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
