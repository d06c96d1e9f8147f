package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corpusworks/webcorpus/internal/config"
	"github.com/corpusworks/webcorpus/internal/convert"
	"github.com/corpusworks/webcorpus/internal/storage"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert stored HTML articles to Markdown",
		Long: `Convert renders every stored HTML article in the corpus into a
Markdown document under the texts directory. Articles that cannot be
parsed are skipped with a warning; already-converted documents are
overwritten.

Run it after a crawl or fetch, or chain it onto the run itself with
the --convert flag of those commands.

Examples:
  # Convert the corpus in ./corpus
  webcorpus convert -o corpus`,
		Args: cobra.NoArgs,
		RunE: runConvertCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Corpus directory holding the articles to convert")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, _ []string) error {
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	store, err := storage.New(outputDir)
	if err != nil {
		return fmt.Errorf("failed to open corpus directory: %w", err)
	}

	converter := convert.New(store, convert.WithLogger(logger))
	converted, err := converter.All(ctx)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d documents into %s\n",
		converted, filepath.Join(store.Root(), storage.TextsDir))
	return nil
}
