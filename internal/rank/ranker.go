package rank

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/corpusworks/webcorpus/internal/storage"
)

// Match pairs a corpus document with its relevance score.
type Match struct {
	// Name is the Markdown file name under the texts directory.
	Name string `json:"name"`

	// Score is the mean cosine similarity between the document and
	// the keyword vectors, in [-1, 1].
	Score float64 `json:"score"`
}

// Ranker scores stored Markdown documents against keywords.
type Ranker struct {
	store    *storage.Store
	embedder Embedder
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Ranker that reads documents from store and embeds
// them through embedder.
func New(store *storage.Store, embedder Embedder, opts ...Option) *Ranker {
	r := &Ranker{
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Rank embeds the keywords and every stored Markdown document and
// returns the documents ordered from most to least relevant, ties
// broken by file name. Documents that cannot be read or embedded are
// logged and excluded. A keyword that cannot be embedded aborts the
// run.
func (r *Ranker) Rank(ctx context.Context, keywords []string) ([]Match, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	keywordVecs := make([][]float32, 0, len(keywords))
	for _, keyword := range keywords {
		vec, err := r.embedder.Embed(ctx, keyword)
		if err != nil {
			return nil, fmt.Errorf("failed to embed keyword %q: %w", keyword, err)
		}
		keywordVecs = append(keywordVecs, vec)
	}

	names, err := r.store.ListTexts()
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus documents: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoDocuments
	}

	matches := make([]Match, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := r.store.ReadText(name)
		if err != nil {
			r.logger.Warn("skipping unreadable document", "name", name, "error", err)
			continue
		}

		vec, err := r.embedder.Embed(ctx, string(content))
		if err != nil {
			r.logger.Warn("skipping document that failed to embed", "name", name, "error", err)
			continue
		}

		var total float64
		for _, keywordVec := range keywordVecs {
			total += cosine(keywordVec, vec)
		}
		score := total / float64(len(keywordVecs))

		matches = append(matches, Match{Name: name, Score: score})
		r.logger.Info("scored document", "name", name, "score", score)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})

	return matches, nil
}

// cosine returns the cosine similarity of two vectors. Vectors of
// unequal length are compared over the shared prefix, and a zero
// vector scores 0.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
