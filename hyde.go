// Package hyde implements Hypothetical Document Embedding (HyDE) as a Go
// library. Instead of embedding a raw query, a language model generates one
// or more hypothetical answers, each answer is embedded, and the vectors are
// aggregated into a single query embedding that bridges the lexical gap
// between short questions and answer-shaped documents.
//
// Basic usage:
//
//	gen, _ := openai.NewGenerator(openai.GeneratorConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    N:      4,
//	})
//	emb, _ := openai.NewEmbedder(openai.EmbedderConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//
//	embedder, err := hyde.New(gen, emb, hyde.PresetWebSearch)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vec, err := embedder.EmbedQuery(ctx, "Where is the Taj Mahal?")
//
// The embedder satisfies the same contract as a plain embedding backend, so
// it can be handed to any similarity index or retrieval pipeline unchanged.
package hyde

import (
	"github.com/blueberrycongee/hyde/pkg/aggregate"
	"github.com/blueberrycongee/hyde/pkg/embedding"
	"github.com/blueberrycongee/hyde/pkg/errors"
	"github.com/blueberrycongee/hyde/pkg/generation"
	"github.com/blueberrycongee/hyde/pkg/prompt"
)

// Version is the current version of the library.
const Version = "1.0.0"

// Re-export capability contracts for convenience.
type (
	// Generator is the text-generation capability consumed by the embedder.
	Generator = generation.Generator

	// Pipeline binds a prompt template to a generator.
	Pipeline = generation.Pipeline

	// TextEmbedder is the base embedding capability contract. The HyDE
	// Embedder itself also satisfies it.
	TextEmbedder = embedding.Embedder

	// Template is an immutable single-placeholder prompt template.
	Template = prompt.Template

	// AggregateStrategy combines per-hypothesis vectors into one.
	AggregateStrategy = aggregate.Strategy

	// HyDEError is the standardized error type for all operations.
	HyDEError = errors.HyDEError
)

// Re-export prompt registry presets.
const (
	PresetWebSearch     = prompt.PresetWebSearch
	PresetSciFact       = prompt.PresetSciFact
	PresetArguAna       = prompt.PresetArguAna
	PresetTRECCovid     = prompt.PresetTRECCovid
	PresetFiQA          = prompt.PresetFiQA
	PresetDBPediaEntity = prompt.PresetDBPediaEntity
	PresetTRECNews      = prompt.PresetTRECNews
	PresetMrTyDi        = prompt.PresetMrTyDi
)

// Re-export error type constants.
const (
	TypeUnknownPreset = errors.TypeUnknownPreset
	TypeTemplate      = errors.TypeTemplate
	TypeGeneration    = errors.TypeGeneration
	TypeEmbedding     = errors.TypeEmbedding
)

// Re-export commonly used constructors and helpers.
var (
	// NewPipeline builds a generation pipeline from a template and generator.
	NewPipeline = generation.NewPipeline

	// NewTemplate builds a custom prompt template.
	NewTemplate = prompt.New

	// LookupPreset returns a built-in template by preset key.
	LookupPreset = prompt.Lookup

	// Presets lists the built-in preset keys.
	Presets = prompt.Presets

	// MeanAggregate is the default aggregation strategy.
	MeanAggregate = aggregate.Mean

	// MaxAggregate aggregates by element-wise maximum.
	MaxAggregate = aggregate.Max

	// FirstAggregate selects the first hypothesis vector.
	FirstAggregate = aggregate.First

	// WeightedAggregate builds a weighted-mean strategy.
	WeightedAggregate = aggregate.Weighted

	// Error predicates.
	IsUnknownPreset = errors.IsUnknownPreset
	IsTemplate      = errors.IsTemplate
	IsGeneration    = errors.IsGeneration
	IsEmbedding     = errors.IsEmbedding
)
