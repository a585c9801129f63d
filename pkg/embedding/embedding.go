// Package embedding defines the capability contract for mapping text to
// fixed-dimension numeric vectors. Provider adapters and the hypothetical
// document embedder itself both satisfy this interface, so either can be
// plugged into a downstream similarity index.
package embedding

import "context"

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for multiple texts, one vector per
	// input text, in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimension returns the dimension of the embedding vectors.
	Dimension() int
}
