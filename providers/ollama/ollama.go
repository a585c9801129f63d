// Package ollama provides generation and embedding capabilities backed by a
// local Ollama server. Ollama exposes an OpenAI-compatible API, so this is a
// thin re-branding of the openai adapter with a local default endpoint and
// no API key requirement.
package ollama

import (
	"github.com/blueberrycongee/hyde/providers/openai"
)

const (
	ProviderName   = "ollama"
	DefaultBaseURL = "http://localhost:11434/v1"

	// Ollama ignores the key but the OpenAI wire format requires one.
	placeholderKey = "ollama"
)

// NewGenerator creates a generator against a local Ollama server.
func NewGenerator(cfg openai.GeneratorConfig) (*openai.Generator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = placeholderKey
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	return openai.NewGenerator(cfg)
}

// NewEmbedder creates an embedder against a local Ollama server.
func NewEmbedder(cfg openai.EmbedderConfig) (*openai.Embedder, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = placeholderKey
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}
	return openai.NewEmbedder(cfg)
}
