// Package metrics holds the Prometheus instruments of the ask and ingest
// pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "supportbot"

// Ask outcomes.
const (
	OutcomeAnswered  = "answered"
	OutcomeEmpty     = "empty_question"
	OutcomeMalformed = "malformed_reply"
	OutcomeError     = "error"
)

// Metrics groups the service's instruments. A nil *Metrics records nothing.
type Metrics struct {
	AskRequests   *prometheus.CounterVec
	AskDuration   prometheus.Histogram
	RetrievalHits prometheus.Histogram

	ChunksIngested prometheus.Counter
	ClearFailures  prometheus.Counter
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AskRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ask_requests_total",
				Help:      "Total number of questions handled, by outcome",
			},
			[]string{"outcome"},
		),
		AskDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ask_duration_seconds",
				Help:      "Query pipeline duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		RetrievalHits: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_hits",
				Help:      "Number of chunks returned per similarity query",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
		),
		ChunksIngested: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunks_ingested_total",
				Help:      "Total number of chunks written to the vector store",
			},
		),
		ClearFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collection_clear_failures_total",
				Help:      "Ignored failures while clearing the collection before ingestion",
			},
		),
	}
}

// RecordAsk records one finished question.
func (m *Metrics) RecordAsk(outcome string, hits int, duration time.Duration) {
	if m == nil {
		return
	}
	m.AskRequests.WithLabelValues(outcome).Inc()
	m.AskDuration.Observe(duration.Seconds())
	if outcome != OutcomeEmpty {
		m.RetrievalHits.Observe(float64(hits))
	}
}

// RecordIngest records chunks written by one ingestion run or file update.
func (m *Metrics) RecordIngest(chunks int) {
	if m == nil {
		return
	}
	m.ChunksIngested.Add(float64(chunks))
}

// RecordClearFailure records an ignored clear failure.
func (m *Metrics) RecordClearFailure() {
	if m == nil {
		return
	}
	m.ClearFailures.Inc()
}
