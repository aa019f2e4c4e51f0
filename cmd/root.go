// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-stats",
	Short: "A CLI tool to generate a GitHub profile stats card.",
	Long: `github-stats aggregates a user's GitHub activity (repositories, stars,
commits, followers and lines of code) and renders it into a shareable SVG
card. Line-of-code totals are reconciled against a local cache so that
only repositories with new commits are re-fetched.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
