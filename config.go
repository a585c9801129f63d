package hyde

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blueberrycongee/hyde/pkg/aggregate"
	"github.com/blueberrycongee/hyde/pkg/embedding"
	"github.com/blueberrycongee/hyde/pkg/generation"
	"github.com/blueberrycongee/hyde/providers/azure"
	"github.com/blueberrycongee/hyde/providers/bedrock"
	"github.com/blueberrycongee/hyde/providers/ollama"
	"github.com/blueberrycongee/hyde/providers/openai"
)

// Config describes an embedder for file-driven construction. Values of the
// form ${VAR} are expanded from the environment at load time.
type Config struct {
	// Preset names the prompt template to use (see Presets).
	Preset string `yaml:"preset"`

	// Aggregation selects the vector aggregation strategy: "mean" (default),
	// "max", or "first".
	Aggregation string `yaml:"aggregation"`

	// Concurrency bounds parallel embedding calls. Zero or one means
	// sequential.
	Concurrency int `yaml:"concurrency"`

	Generator GeneratorSettings `yaml:"generator"`
	Embedder  EmbedderSettings  `yaml:"embedder"`
}

// GeneratorSettings configures the generation provider.
type GeneratorSettings struct {
	// Provider is one of "openai", "azure", or "ollama".
	Provider string `yaml:"provider"`

	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Deployment string        `yaml:"deployment"`
	APIVersion string        `yaml:"api_version"`
	N          int           `yaml:"n"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`

	Temperature *float64 `yaml:"temperature"`
}

// EmbedderSettings configures the embedding provider.
type EmbedderSettings struct {
	// Provider is one of "openai", "azure", "ollama", or "bedrock".
	Provider string `yaml:"provider"`

	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Deployment string        `yaml:"deployment"`
	APIVersion string        `yaml:"api_version"`
	Region     string        `yaml:"region"`
	Dimension  int           `yaml:"dimension"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LoadConfig reads and parses a YAML config file, expanding ${VAR}
// references from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for structural problems before construction.
func (c *Config) Validate() error {
	switch c.Generator.Provider {
	case "openai", "azure", "ollama":
	case "":
		return fmt.Errorf("generator.provider is required")
	default:
		return fmt.Errorf("unsupported generator provider %q", c.Generator.Provider)
	}

	switch c.Embedder.Provider {
	case "openai", "azure", "ollama", "bedrock":
	case "":
		return fmt.Errorf("embedder.provider is required")
	default:
		return fmt.Errorf("unsupported embedder provider %q", c.Embedder.Provider)
	}

	if c.Aggregation != "" {
		if _, err := aggregate.FromName(c.Aggregation); err != nil {
			return err
		}
	}
	return nil
}

// NewFromConfig builds a fully wired embedder from a loaded config.
func NewFromConfig(ctx context.Context, cfg *Config) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := buildGenerator(cfg.Generator)
	if err != nil {
		return nil, err
	}
	emb, err := buildEmbedder(ctx, cfg.Embedder)
	if err != nil {
		return nil, err
	}

	var opts []Option
	if cfg.Aggregation != "" {
		strategy, err := aggregate.FromName(cfg.Aggregation)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAggregator(strategy))
	}
	if cfg.Concurrency > 1 {
		opts = append(opts, WithConcurrency(cfg.Concurrency))
	}

	preset := cfg.Preset
	if preset == "" {
		preset = PresetWebSearch
	}
	return New(gen, emb, preset, opts...)
}

func buildGenerator(s GeneratorSettings) (generation.Generator, error) {
	switch s.Provider {
	case "openai":
		return openai.NewGenerator(openai.GeneratorConfig{
			APIKey:      s.APIKey,
			BaseURL:     s.BaseURL,
			Model:       s.Model,
			N:           s.N,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Timeout:     s.Timeout,
		})
	case "azure":
		return azure.NewGenerator(azure.GeneratorConfig{
			APIKey:      s.APIKey,
			APIBase:     s.BaseURL,
			APIVersion:  s.APIVersion,
			Deployment:  s.Deployment,
			N:           s.N,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Timeout:     s.Timeout,
		})
	case "ollama":
		return ollama.NewGenerator(openai.GeneratorConfig{
			APIKey:      s.APIKey,
			BaseURL:     s.BaseURL,
			Model:       s.Model,
			N:           s.N,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Timeout:     s.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported generator provider %q", s.Provider)
	}
}

func buildEmbedder(ctx context.Context, s EmbedderSettings) (embedding.Embedder, error) {
	switch s.Provider {
	case "openai":
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:    s.APIKey,
			BaseURL:   s.BaseURL,
			Model:     s.Model,
			Dimension: s.Dimension,
			Timeout:   s.Timeout,
		})
	case "azure":
		return azure.NewEmbedder(azure.EmbedderConfig{
			APIKey:     s.APIKey,
			APIBase:    s.BaseURL,
			APIVersion: s.APIVersion,
			Deployment: s.Deployment,
			Dimension:  s.Dimension,
			Timeout:    s.Timeout,
		})
	case "ollama":
		return ollama.NewEmbedder(openai.EmbedderConfig{
			APIKey:    s.APIKey,
			BaseURL:   s.BaseURL,
			Model:     s.Model,
			Dimension: s.Dimension,
			Timeout:   s.Timeout,
		})
	case "bedrock":
		return bedrock.NewFromEnvironment(ctx, bedrock.Config{
			Region:    s.Region,
			Model:     s.Model,
			Dimension: s.Dimension,
			Timeout:   s.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported embedder provider %q", s.Provider)
	}
}
