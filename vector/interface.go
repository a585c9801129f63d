// Package vector defines the similarity-index contract the retrieval layer
// consumes, and a Qdrant-backed implementation. The index's internal search
// algorithm is the backend's concern; this package only inserts vectors with
// payloads and asks for nearest neighbors.
package vector

import "context"

// Store defines the interface for vector storage backends.
type Store interface {
	// Search finds the nearest neighbors of the vector.
	// Returns results sorted by similarity (most similar first).
	Search(ctx context.Context, vector []float64, opts SearchOptions) ([]SearchResult, error)

	// Insert stores a vector with associated payload.
	Insert(ctx context.Context, entry Entry) error

	// InsertBatch stores multiple vectors in a single operation.
	InsertBatch(ctx context.Context, entries []Entry) error

	// Delete removes a vector by ID.
	Delete(ctx context.Context, id string) error

	// Ping checks if the vector store is healthy.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// SearchOptions configures vector search behavior.
type SearchOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// ScoreThreshold excludes results scoring below it when positive.
	// For cosine similarity: 1 = identical, 0 = orthogonal.
	ScoreThreshold float64
}

// SearchResult represents a single search result.
type SearchResult struct {
	// ID is the unique identifier of the vector.
	ID string

	// Score is the similarity score reported by the backend.
	Score float64

	// Payload contains the document associated with this vector.
	Payload Payload
}

// Entry represents a vector entry to be stored.
type Entry struct {
	// ID is the unique identifier for this entry.
	// If empty, a UUID will be generated.
	ID string

	// Vector is the embedding vector.
	Vector []float64

	// Payload contains the document to store alongside the vector.
	Payload Payload
}

// Payload carries the source document for a stored vector.
type Payload struct {
	// Text is the document text the vector was computed from.
	Text string `json:"text"`

	// Metadata holds caller-defined attributes.
	Metadata map[string]string `json:"metadata,omitempty"`
}
