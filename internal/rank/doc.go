// Package rank scores the Markdown corpus against user keywords.
//
// Each keyword and each document under texts/ is embedded through an
// Ollama-compatible embeddings endpoint, and every document receives
// the mean cosine similarity between its vector and the keyword
// vectors. Documents come back sorted from most to least relevant.
//
// A document whose embedding request fails is logged and left out of
// the ranking; a keyword that cannot be embedded aborts the run, since
// no meaningful score exists without it.
package rank
