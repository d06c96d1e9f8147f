// Package main provides the entry point for the webcorpus CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webcorpus.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webcorpus",
		Short: "Build text corpora from documentation sites",
		Long: `webcorpus collects the pages of a documentation site into a local
corpus: cleaned HTML artifacts, a synthesized sitemap.xml, and
optionally Markdown renditions ranked against keywords.

The crawl command discovers pages by following same-host links from a
seed URL. The fetch command downloads exactly the pages listed in the
site's published sitemap. Both honor robots.txt and accept only
https:// seeds.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewMatchCmd())
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
