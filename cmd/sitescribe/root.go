// Package main provides the entry point for the SiteScribe CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for SiteScribe.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescribe",
		Short: "Turn a documentation site into a single Markdown document",
		Long: `SiteScribe crawls a website from a seed URL and concatenates the main
content of every in-scope page into one combined Markdown document.

The crawl stays on the seed's host and, by default, under the seed's own
path. Use --render for sites that build their pages with JavaScript, and
"sitescribe cookies" to capture a login session for authenticated sites.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCookiesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
