package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueberrycongee/hyde/pkg/errors"
)

func TestNewEmbedder_Validation(t *testing.T) {
	_, err := NewEmbedder(EmbedderConfig{})
	assert.Error(t, err)

	e, err := NewEmbedder(EmbedderConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", e.Model())
	assert.Equal(t, 1536, e.Dimension())
}

func TestEmbedder_EmbedBatch_ReassemblesByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"alpha", "beta"}, req.Input)

		// Data intentionally out of order.
		resp := embeddingResponse{
			Object: "list",
			Data: []embeddingData{
				{Object: "embedding", Index: 1, Embedding: []float64{0.4, 0.5, 0.6}},
				{Object: "embedding", Index: 0, Embedding: []float64{0.1, 0.2, 0.3}},
			},
			Model: "text-embedding-3-small",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e, err := NewEmbedder(EmbedderConfig{APIKey: "sk-test", BaseURL: server.URL, Dimension: 3})
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vectors[0])
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, vectors[1])
}

func TestEmbedder_EmbedBatch_Empty(t *testing.T) {
	e, err := NewEmbedder(EmbedderConfig{APIKey: "sk-test"})
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{
			Data: []embeddingData{
				{Index: 0, Embedding: []float64{1, 2}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e, err := NewEmbedder(EmbedderConfig{APIKey: "sk-test", BaseURL: server.URL, Dimension: 2})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vec)
}

func TestEmbedder_MapsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer server.Close()

	e, err := NewEmbedder(EmbedderConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.IsEmbedding(err))

	var he *errors.HyDEError
	require.ErrorAs(t, err, &he)
	assert.True(t, he.Retryable)
	assert.Equal(t, "rate limit reached", he.Message)
}
