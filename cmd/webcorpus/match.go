package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusworks/webcorpus/internal/config"
	"github.com/corpusworks/webcorpus/internal/rank"
	"github.com/corpusworks/webcorpus/internal/storage"
)

// embedTimeout bounds one embedding request. Embedding a long
// document on a cold model can take a while, so this is far above the
// crawl's page timeout.
const embedTimeout = 120 * time.Second

// NewMatchCmd creates the match command.
func NewMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <keyword>...",
		Short: "Rank corpus documents against keywords",
		Long: `Match scores every Markdown document in the corpus against the given
keywords using embeddings from a local Ollama endpoint, then prints
the documents from most to least relevant.

Each document's score is the mean cosine similarity between its
embedding and the keyword embeddings. Documents that cannot be read
or embedded are skipped with a warning.

Run convert first: match reads the texts directory, not the raw HTML
articles.

Examples:
  # Rank the corpus in ./corpus against two keywords
  webcorpus match -o corpus kubernetes deployment

  # Top five matches as JSON, using a remote endpoint
  webcorpus match --top 5 --json --ollama-url http://gpu-box:11434 tracing`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMatchCmd,
	}

	cmd.Flags().String("ollama-url", config.DefaultOllamaURL,
		"Ollama endpoint root for embedding requests")
	cmd.Flags().String("model", config.DefaultEmbedModel,
		"Embedding model name")
	cmd.Flags().IntP("top", "n", 0,
		"Print only the best N matches (0 prints all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output matches as JSON")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Corpus directory holding the Markdown documents")

	return cmd
}

// runMatchCmd executes the match command.
func runMatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildMatchConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.TopN < 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidTopN)
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

	return runMatch(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildMatchConfig creates a Config from the match command flags.
func buildMatchConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.OllamaURL, err = cmd.Flags().GetString("ollama-url")
	if err != nil {
		return nil, err
	}

	cfg.EmbedModel, err = cmd.Flags().GetString("model")
	if err != nil {
		return nil, err
	}

	cfg.TopN, err = cmd.Flags().GetInt("top")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Keywords = args

	return cfg, nil
}

// runMatch ranks the corpus and prints the matches.
func runMatch(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to open corpus directory: %w", err)
	}

	client := rank.NewClient(&http.Client{Timeout: embedTimeout},
		rank.WithBaseURL(cfg.OllamaURL),
		rank.WithModel(cfg.EmbedModel),
	)

	ranker := rank.New(store, client, rank.WithLogger(logger))

	matches, err := ranker.Rank(ctx, cfg.Keywords)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	if cfg.TopN > 0 && len(matches) > cfg.TopN {
		matches = matches[:cfg.TopN]
	}

	if cfg.JSONReport {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(matches)
	}

	for i, match := range matches {
		fmt.Fprintf(out, "%3d. %-50s %.4f\n", i+1, match.Name, match.Score)
	}
	return nil
}
