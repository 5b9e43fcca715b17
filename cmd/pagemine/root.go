package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagemine.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagemine",
		Short: "Bounded web crawler with selector-based data extraction",
		Long: `pagemine crawls a site starting from one or more seed URLs and extracts
structured data from every page using CSS selectors or XPath expressions.

Crawls are bounded by page count, link depth, and an optional time budget,
and are polite by default: rate limited, single-flight per URL, and
respectful of robots.txt.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
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
