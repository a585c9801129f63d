// Package errors defines unified error types for hypothetical document
// embedding operations. Provider-specific failures are mapped to these
// standard error types so callers can branch on kind rather than provider.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// HyDEError represents a standardized error from a HyDE operation.
// It carries the failing capability's provider and model so callers can
// log and react without unwrapping provider-specific errors.
type HyDEError struct {
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Retryable  bool   `json:"-"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *HyDEError) Error() string {
	if e.Provider != "" || e.Model != "" {
		return fmt.Sprintf("[%s] %s (provider=%s, model=%s)", e.Type, e.Message, e.Provider, e.Model)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *HyDEError) Unwrap() error {
	return e.Err
}

// Common error types as constants for consistency.
const (
	// TypeUnknownPreset indicates a preset key absent from the prompt registry.
	TypeUnknownPreset = "unknown_preset_error"

	// TypeTemplate indicates a malformed prompt template (placeholder arity).
	TypeTemplate = "template_error"

	// TypeGeneration indicates the generation capability failed or
	// returned zero hypothetical texts.
	TypeGeneration = "generation_error"

	// TypeEmbedding indicates the embedding capability failed on any text,
	// or produced vectors of inconsistent dimensionality.
	TypeEmbedding = "embedding_error"
)

// NewUnknownPresetError creates a construction-time error for a bad preset key.
func NewUnknownPresetError(preset string) *HyDEError {
	return &HyDEError{
		Message:   fmt.Sprintf("unknown prompt preset %q", preset),
		Type:      TypeUnknownPreset,
		Retryable: false,
	}
}

// NewTemplateError creates a construction-time error for a malformed template.
func NewTemplateError(message string) *HyDEError {
	return &HyDEError{
		Message:   message,
		Type:      TypeTemplate,
		Retryable: false,
	}
}

// NewGenerationError creates a call-time error for a failed generation.
func NewGenerationError(provider, model, message string, cause error) *HyDEError {
	return &HyDEError{
		Message:  message,
		Type:     TypeGeneration,
		Provider: provider,
		Model:    model,
		Err:      cause,
	}
}

// NewEmbeddingError creates a call-time error for a failed embedding.
func NewEmbeddingError(provider, model, message string, cause error) *HyDEError {
	return &HyDEError{
		Message:  message,
		Type:     TypeEmbedding,
		Provider: provider,
		Model:    model,
		Err:      cause,
	}
}

// FromStatusCode builds a HyDEError of the given type from an HTTP failure,
// marking rate limits, timeouts, and upstream outages as retryable.
func FromStatusCode(errType, provider, model string, statusCode int, message string) *HyDEError {
	return &HyDEError{
		StatusCode: statusCode,
		Message:    message,
		Type:       errType,
		Provider:   provider,
		Model:      model,
		Retryable:  RetryableStatus(statusCode),
	}
}

// RetryableStatus reports whether an HTTP status from a capability backend
// is worth retrying. Rate limits and timeouts are; other 4xx are not.
func RetryableStatus(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		switch statusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}
	return statusCode >= 500
}

// IsUnknownPreset reports whether err is an unknown-preset error.
func IsUnknownPreset(err error) bool { return isType(err, TypeUnknownPreset) }

// IsTemplate reports whether err is a template error.
func IsTemplate(err error) bool { return isType(err, TypeTemplate) }

// IsGeneration reports whether err is a generation error.
func IsGeneration(err error) bool { return isType(err, TypeGeneration) }

// IsEmbedding reports whether err is an embedding error.
func IsEmbedding(err error) bool { return isType(err, TypeEmbedding) }

func isType(err error, t string) bool {
	var he *HyDEError
	if stderrors.As(err, &he) {
		return he.Type == t
	}
	return false
}
