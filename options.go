package hyde

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/blueberrycongee/hyde/pkg/aggregate"
)

// config holds construction-time settings for an Embedder.
type config struct {
	aggregator  aggregate.Strategy
	logger      *slog.Logger
	tracer      trace.Tracer
	registerer  prometheus.Registerer
	concurrency int
}

// Option is a function that configures the Embedder.
type Option func(*config)

// defaultConfig returns sensible defaults.
func defaultConfig() *config {
	return &config{
		aggregator:  aggregate.Mean(),
		logger:      slog.Default(),
		tracer:      otel.Tracer("github.com/blueberrycongee/hyde"),
		concurrency: 1,
	}
}

// WithAggregator replaces the default element-wise mean aggregation.
func WithAggregator(s aggregate.Strategy) Option {
	return func(c *config) {
		if s != nil {
			c.aggregator = s
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer used for embed-query spans.
// The default is the global tracer provider, which is a no-op unless the
// application installs one.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMetrics registers Prometheus instruments with the given registerer.
// Without this option no metrics are recorded.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithConcurrency bounds how many of the per-hypothesis embedding calls may
// run at once. The default of 1 keeps them sequential; order of the
// resulting vectors is preserved either way.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}
