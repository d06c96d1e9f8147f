package rank

import "errors"

var (
	// ErrNoKeywords is returned when Rank is called without any
	// keywords to score against.
	ErrNoKeywords = errors.New("at least one keyword is required")

	// ErrNoDocuments is returned when the texts directory holds no
	// Markdown documents to rank.
	ErrNoDocuments = errors.New("no Markdown documents to rank")

	// ErrEmbeddingFailed is returned when the embeddings endpoint
	// answers with a non-OK status or an empty vector.
	ErrEmbeddingFailed = errors.New("embedding request failed")
)
