package main

import (
	"github.com/spf13/cobra"

	"github.com/corpusworks/webcorpus/internal/model"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <base-url>...",
		Short: "Fetch exactly the pages a site's sitemap lists",
		Long: `Fetch downloads the site's published sitemap.xml, then fetches every
URL it lists without following links. Nested sitemap indexes are
followed; unreadable nested sitemaps are skipped with a warning.

The fetched pages are stored the same way crawl stores them: cleaned
HTML artifacts under the output directory plus a synthesized
sitemap.xml of what was actually fetched, and the session is recorded
in the history database.

Use fetch instead of crawl when a site publishes a complete sitemap:
it visits no stray URLs and never walks pagination loops.

Examples:
  # Fetch a documentation site's sitemap pages into ./corpus
  webcorpus fetch -o corpus https://docs.example.com

  # Fetch and convert to Markdown, skipping the history database
  webcorpus fetch --convert --no-db https://docs.example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFetchCmd,
	}

	addRunFlags(cmd)

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	return runCorpusCmd(cmd, args, model.ModeFetch)
}
