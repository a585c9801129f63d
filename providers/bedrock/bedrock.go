// Package bedrock implements an embedding capability over AWS Bedrock's
// Titan text embedding models. Requests are SigV4-signed against the
// bedrock-runtime invoke endpoint; credentials come from the standard AWS
// resolution chain.
package bedrock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/goccy/go-json"

	"github.com/blueberrycongee/hyde/pkg/errors"
)

const (
	ProviderName = "bedrock"

	// DefaultModel is the Titan text embedding model invoked by default.
	DefaultModel = "amazon.titan-embed-text-v2:0"
)

// Embedder implements the embedding capability via Bedrock Titan.
// Titan has no batch endpoint; EmbedBatch issues one invoke per text.
type Embedder struct {
	client    *http.Client
	cfg       aws.Config
	region    string
	model     string
	dimension int
}

// Config holds configuration for the Bedrock embedder.
type Config struct {
	// Region overrides the region resolved from the AWS config chain.
	Region string

	// Model is the Bedrock model ID (default amazon.titan-embed-text-v2:0).
	Model string

	// Dimension is the output dimensionality. Titan v2 supports 256, 512,
	// and 1024 (the default).
	Dimension int

	Timeout time.Duration
}

// New creates a Bedrock embedder from an already-loaded AWS config.
func New(awsCfg aws.Config, cfg Config) (*Embedder, error) {
	region := cfg.Region
	if region == "" {
		region = awsCfg.Region
	}
	if region == "" {
		return nil, fmt.Errorf("bedrock region is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Embedder{
		client:    &http.Client{Timeout: cfg.Timeout},
		cfg:       awsCfg,
		region:    region,
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

// NewFromEnvironment loads AWS configuration from the environment or the
// default profile and creates an embedder.
func NewFromEnvironment(ctx context.Context, cfg Config) (*Embedder, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return New(awsCfg, cfg)
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	payload := titanRequest{
		InputText:  text,
		Dimensions: e.dimension,
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.model, "marshal payload: "+err.Error(), err)
	}

	// Format: https://bedrock-runtime.{region}.amazonaws.com/model/{modelId}/invoke
	url := fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/model/%s/invoke", e.region, e.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.model, "create request: "+err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := e.sign(ctx, req, bodyBytes); err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.model, "sign request: "+err.Error(), err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.model, "invoke request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.FromStatusCode(errors.TypeEmbedding, ProviderName, e.model,
			resp.StatusCode, fmt.Sprintf("invoke failed: %s", string(body)))
	}

	var titanResp titanResponse
	if err := json.NewDecoder(resp.Body).Decode(&titanResp); err != nil {
		return nil, errors.NewEmbeddingError(ProviderName, e.model, "decode response: "+err.Error(), err)
	}
	if len(titanResp.Embedding) == 0 {
		return nil, errors.NewEmbeddingError(ProviderName, e.model, "empty embedding in response", nil)
	}

	return titanResp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts, one invoke per text.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Model returns the Bedrock model ID.
func (e *Embedder) Model() string {
	return e.model
}

// Dimension returns the embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

func (e *Embedder) sign(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := e.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve credentials: %w", err)
	}

	payloadHash := sha256.Sum256(body)
	hexHash := hex.EncodeToString(payloadHash[:])

	signer := v4.NewSigner()
	return signer.SignHTTP(ctx, creds, req, hexHash, "bedrock", e.region, time.Now())
}

// Titan API types

type titanRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type titanResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}
