package hyde

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blueberrycongee/hyde/pkg/embedding"
	"github.com/blueberrycongee/hyde/vector"
)

// Document is a corpus text to index.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Match is a retrieved document with its similarity score.
type Match struct {
	Document Document
	Score    float64
}

// Retriever composes an embedding capability with a vector store into an
// index-and-search pipeline. Handing it a HyDE Embedder gives hypothetical
// document retrieval; handing it a plain embedder gives ordinary semantic
// search — the two are interchangeable by construction.
type Retriever struct {
	embedder embedding.Embedder
	store    vector.Store
	logger   *slog.Logger
}

// NewRetriever creates a retriever over the given embedder and store.
func NewRetriever(emb embedding.Embedder, store vector.Store, opts ...Option) *Retriever {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Retriever{
		embedder: emb,
		store:    store,
		logger:   cfg.logger,
	}
}

// Index embeds the documents and inserts them into the vector store.
// Embedding goes through the batch path, so a HyDE embedder indexes real
// document text without generating hypothetical answers.
func (r *Retriever) Index(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	entries := make([]vector.Entry, len(docs))
	for i, d := range docs {
		entries[i] = vector.Entry{
			ID:     d.ID,
			Vector: vectors[i],
			Payload: vector.Payload{
				Text:     d.Text,
				Metadata: d.Metadata,
			},
		}
	}

	if err := r.store.InsertBatch(ctx, entries); err != nil {
		return fmt.Errorf("insert vectors: %w", err)
	}

	r.logger.Debug("documents indexed", "count", len(docs))
	return nil
}

// Retrieve embeds the query and returns the topK most similar documents.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Match, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.Search(ctx, vec, vector.SearchOptions{TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	matches := make([]Match, len(results))
	for i, res := range results {
		matches[i] = Match{
			Document: Document{
				ID:       res.ID,
				Text:     res.Payload.Text,
				Metadata: res.Payload.Metadata,
			},
			Score: res.Score,
		}
	}
	return matches, nil
}
