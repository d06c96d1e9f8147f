package rank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestClientEmbed(t *testing.T) {
	t.Parallel()

	var (
		mu         sync.Mutex
		gotPath    string
		gotMime    string
		gotRequest embedRequest
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotMime = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			mu.Unlock()
			return
		}
		mu.Unlock()

		if err := json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}}); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	t.Cleanup(ts.Close)

	client := NewClient(ts.Client(), WithBaseURL(ts.URL), WithModel("test-embed"))

	vec, err := client.Embed(context.Background(), "hello corpus")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if want := []float32{0.1, 0.2, 0.3}; !reflect.DeepEqual(vec, want) {
		t.Errorf("Embed() = %v, want %v", vec, want)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/api/embeddings" {
		t.Errorf("request path = %q, want %q", gotPath, "/api/embeddings")
	}
	if gotMime != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotMime, "application/json")
	}
	if gotRequest.Model != "test-embed" {
		t.Errorf("request model = %q, want %q", gotRequest.Model, "test-embed")
	}
	if gotRequest.Prompt != "hello corpus" {
		t.Errorf("request prompt = %q, want %q", gotRequest.Prompt, "hello corpus")
	}
}

func TestClientEmbedServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	client := NewClient(ts.Client(), WithBaseURL(ts.URL))

	_, err := client.Embed(context.Background(), "anything")
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("Embed() error = %v, want ErrEmbeddingFailed", err)
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Embed() error = %q, want the server detail included", err)
	}
}

func TestClientEmbedEmptyVector(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"embedding": []}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	t.Cleanup(ts.Close)

	client := NewClient(ts.Client(), WithBaseURL(ts.URL))

	if _, err := client.Embed(context.Background(), "anything"); !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("Embed() error = %v, want ErrEmbeddingFailed", err)
	}
}

func TestClientEmbedMalformedResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`not json at all`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	t.Cleanup(ts.Close)

	client := NewClient(ts.Client(), WithBaseURL(ts.URL))

	if _, err := client.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("Embed() with malformed response returned nil error")
	}
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient(nil)

	if client.httpClient == nil {
		t.Fatal("NewClient(nil) left httpClient nil")
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, defaultTimeout)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
	if client.model != DefaultModel {
		t.Errorf("model = %q, want %q", client.model, DefaultModel)
	}
}

func TestWithBaseURLTrimsTrailingSlash(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, WithBaseURL("http://embedder.internal:11434/"))

	if want := "http://embedder.internal:11434"; client.baseURL != want {
		t.Errorf("baseURL = %q, want %q", client.baseURL, want)
	}
}
