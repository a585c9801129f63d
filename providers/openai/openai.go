// Package openai provides OpenAI-backed generation and embedding
// capabilities. It serves as the reference implementation for other
// provider adapters.
package openai

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

const (
	// ProviderName is the identifier for this provider.
	ProviderName = "openai"

	// DefaultBaseURL is the default OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Generator produces hypothetical answers via the chat completions API.
// The number of completions per call is fixed at construction via N.
type Generator struct {
	client      *http.Client
	apiKey      string
	baseURL     string
	model       string
	n           int
	temperature *float64
	maxTokens   int
	headers     map[string]string
}

// GeneratorConfig holds configuration for the OpenAI generator.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	N           int
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	Headers     map[string]string

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultGeneratorConfig returns sensible defaults for the OpenAI generator.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		BaseURL: DefaultBaseURL,
		Model:   "gpt-4o-mini",
		N:       1,
		Timeout: 60 * time.Second,
	}
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api_key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
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
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		n:           cfg.N,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		headers:     cfg.Headers,
	}, nil
}

// Generate returns N completions for the prompt, in choice order.
func (g *Generator) Generate(ctx context.Context, promptText string) ([]string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: promptText},
		},
		N:           g.n,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.model, "marshal request: "+err.Error(), err)
	}

	url := g.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.model, "create request: "+err.Error(), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.model, "completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, mapHTTPError(errors.TypeGeneration, g.model, resp.StatusCode, body)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, errors.NewGenerationError(ProviderName, g.model, "decode response: "+err.Error(), err)
	}

	texts := make([]string, 0, len(chatResp.Choices))
	for _, c := range chatResp.Choices {
		texts = append(texts, c.Message.Content)
	}
	return texts, nil
}

// Model returns the generation model name.
func (g *Generator) Model() string {
	return g.model
}

// mapHTTPError converts an OpenAI error response to a standardized error.
func mapHTTPError(errType, model string, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := "unknown error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return errors.FromStatusCode(errType, ProviderName, model, statusCode, message)
}

// OpenAI API types

type chatRequest struct {
	Model       string        `json:"model"`
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
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Model   string       `json:"model"`
}

type chatChoice struct {
	Index   int         `json:"index"`
	Message chatMessage `json:"message"`
}
