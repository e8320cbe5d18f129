package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

// OutcomeOK labels a run that produced a document.
const OutcomeOK = "ok"

// Metrics records pipeline outcomes and stage latency. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generations   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	retrieved     *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// generations counts finished runs by document type and error kind
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compligen_generations_total",
			Help: "Document generations by document type and outcome",
		}, []string{"doc_type", "outcome"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compligen_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"doc_type", "stage"}),

		retrieved: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compligen_retrieved_chunks",
			Help:    "Chunks retrieved per query",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 16},
		}, []string{"doc_type", "source"}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(dt models.DocumentType, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(string(dt), stage).Observe(d.Seconds())
}

// ObserveRetrieved records the chunk count of one query. source is "law" or
// "example".
func (m *Metrics) ObserveRetrieved(dt models.DocumentType, source string, n int) {
	if m == nil {
		return
	}
	m.retrieved.WithLabelValues(string(dt), source).Observe(float64(n))
}

// RecordOutcome counts a finished run. A nil err counts as OutcomeOK, a typed
// error by its kind, anything else as "unknown".
func (m *Metrics) RecordOutcome(dt models.DocumentType, err error) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(string(dt), Outcome(err)).Inc()
}

// Outcome is the outcome label for err.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind := types.KindOf(err); kind != "" {
		return string(kind)
	}
	return "unknown"
}

// WriteToTextfile writes all metrics in the node exporter textfile format.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
