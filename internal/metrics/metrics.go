// Package metrics provides Prometheus metrics for HyDE query embedding.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hyde"

// Phases of an embed-query call, used as the "phase" label.
const (
	PhaseGenerate  = "generate"
	PhaseEmbed     = "embed"
	PhaseAggregate = "aggregate"
)

// Recorder holds the metric instruments for one embedder instance.
type Recorder struct {
	queries       prometheus.Counter
	documents     prometheus.Counter
	hypotheses    prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	errors        *prometheus.CounterVec
}

// NewRecorder registers the HyDE instruments with the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		queries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_embeddings_total",
			Help:      "Total number of embed-query calls",
		}),
		documents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_embeddings_total",
			Help:      "Total number of documents embedded via embed-documents",
		}),
		hypotheses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hypothetical_texts_per_query",
			Help:      "Number of hypothetical answers generated per query",
			Buckets:   []float64{1, 2, 4, 8, 16},
		}),
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of each embed-query phase",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors by error type",
		}, []string{"type"}),
	}
}

// ObserveQuery records a completed embed-query call.
func (r *Recorder) ObserveQuery(hypotheses int) {
	if r == nil {
		return
	}
	r.queries.Inc()
	r.hypotheses.Observe(float64(hypotheses))
}

// ObserveDocuments records an embed-documents call.
func (r *Recorder) ObserveDocuments(count int) {
	if r == nil {
		return
	}
	r.documents.Add(float64(count))
}

// ObservePhase records the duration of one embed-query phase.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	if r == nil {
		return
	}
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// ObserveError records an error by taxonomy type.
func (r *Recorder) ObserveError(errType string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(errType).Inc()
}
