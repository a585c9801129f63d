// Package azure provides Azure OpenAI-backed generation and embedding
// capabilities. Azure routes by deployment name and authenticates with an
// api-key header rather than a bearer token.
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

// ProviderName is the identifier for this provider.
const ProviderName = "azure"

// DefaultAPIVersion is the api-version query parameter sent to Azure.
const DefaultAPIVersion = "2024-02-01"

// Generator produces hypothetical answers via an Azure OpenAI chat deployment.
type Generator struct {
	client      *http.Client
	apiKey      string
	apiBase     string
	apiVersion  string
	deployment  string
	n           int
	temperature *float64
	maxTokens   int
}

// GeneratorConfig holds configuration for the Azure generator.
type GeneratorConfig struct {
	APIKey      string
	APIBase     string // e.g., "https://<resource>.openai.azure.com"
	APIVersion  string
	Deployment  string // Deployment name for the chat model
	N           int
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// NewGenerator creates a new Azure OpenAI generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
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
	if cfg.N <= 0 {
		cfg.N = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Generator{
		client:      client,
		apiKey:      cfg.APIKey,
		apiBase:     strings.TrimSuffix(cfg.APIBase, "/"),
		apiVersion:  cfg.APIVersion,
		deployment:  cfg.Deployment,
		n:           cfg.N,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate returns N completions for the prompt, in choice order.
func (g *Generator) Generate(ctx context.Context, promptText string) ([]string, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "user", Content: promptText},
		},
		N:           g.n,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.deployment, "marshal request: "+err.Error(), err)
	}

	// Azure OpenAI URL format:
	// https://<resource>.openai.azure.com/openai/deployments/<deployment>/chat/completions?api-version=<version>
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		g.apiBase, g.deployment, g.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.deployment, "create request: "+err.Error(), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.deployment, "completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, mapHTTPError(errors.TypeGeneration, g.deployment, resp.StatusCode, body)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.deployment, "decode response: "+err.Error(), err)
	}

	texts := make([]string, 0, len(chatResp.Choices))
	for _, c := range chatResp.Choices {
		texts = append(texts, c.Message.Content)
	}
	return texts, nil
}

// Model returns the deployment name.
func (g *Generator) Model() string {
	return g.deployment
}

func mapHTTPError(errType, deployment string, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := "unknown error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return errors.FromStatusCode(errType, ProviderName, deployment, statusCode, message)
}

// Azure API types (same structure as OpenAI, model implied by deployment)

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	N           int           `json:"n,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index   int         `json:"index"`
	Message chatMessage `json:"message"`
}
