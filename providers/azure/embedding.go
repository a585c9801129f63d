package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/blueberrycongee/hyde/pkg/errors"
)

// Embedder implements the embedding capability using an Azure OpenAI
// embedding deployment.
type Embedder struct {
	client     *http.Client
	apiKey     string
	apiBase    string
	apiVersion string
	deployment string
	dimension  int
}

// EmbedderConfig holds configuration for the Azure embedder.
type EmbedderConfig struct {
	APIKey     string
	APIBase    string // e.g., "https://<resource>.openai.azure.com"
	APIVersion string
	Deployment string // Deployment name for the embedding model
	Dimension  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewEmbedder creates a new Azure OpenAI embedder.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure api_key is required")
	}
	if cfg.APIBase == "" {
		return nil, fmt.Errorf("azure api_base is required")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("azure deployment is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Embedder{
		client:     client,
		apiKey:     cfg.APIKey,
		apiBase:    strings.TrimSuffix(cfg.APIBase, "/"),
		apiVersion: cfg.APIVersion,
		deployment: cfg.Deployment,
		dimension:  cfg.Dimension,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errors.NewEmbeddingError(ProviderName, e.deployment, "no embedding returned", nil)
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{Input: texts}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.deployment, "marshal request: "+err.Error(), err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		e.apiBase, e.deployment, e.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.deployment, "create request: "+err.Error(), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.deployment, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, mapHTTPError(errors.TypeEmbedding, e.deployment, resp.StatusCode, body)
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.deployment, "decode response: "+err.Error(), err)
	}

	// Reassemble by index to guarantee input order.
	embeddings := make([][]float64, len(texts))
	for _, data := range embResp.Data {
		if data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}

	return embeddings, nil
}

// Model returns the deployment name.
func (e *Embedder) Model() string {
	return e.deployment
}

// Dimension returns the embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

type embeddingRequest struct {
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}
