package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/igestorphone/igestorphone-sub000/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbStatementDuration prometheus.HistogramVec

	// Ingestion pipeline metrics
	IngestBatchesTotal       prometheus.CounterVec
	IngestBatchDuration      prometheus.Histogram
	CandidatesTotal          prometheus.CounterVec
	ProductsDeactivatedTotal prometheus.Counter

	// Extraction collaborator metrics
	ExtractionCallsTotal prometheus.CounterVec
	ExtractionDuration   prometheus.Histogram

	// Ingestion queue metrics
	QueueDepthGauge     prometheus.Gauge
	QueueDiscardedTotal prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database statement duration
	DbStatementDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_statement_duration_seconds",
			Help:    "Duration of database statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"verb"},
	)

	// Ingestion batch metrics
	IngestBatchesTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ingest_batches_total",
			Help: "Total number of ingested price-list batches",
		},
		[]string{"channel", "outcome"},
	)

	IngestBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_ingest_batch_duration_seconds",
			Help:    "Duration of a full batch run in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	CandidatesTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ingest_candidates_total",
			Help: "Total number of extracted candidates by result",
		},
		[]string{"result"},
	)

	ProductsDeactivatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_products_deactivated_total",
			Help: "Total number of products deactivated by reconciliation",
		},
	)

	// Extraction collaborator metrics
	ExtractionCallsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_extraction_calls_total",
			Help: "Total number of extraction API calls by outcome",
		},
		[]string{"outcome"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_extraction_duration_seconds",
			Help:    "Duration of extraction API calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Queue metrics
	QueueDepthGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_ingest_queue_depth",
			Help: "Current number of pending payloads in the ingestion queue",
		},
	)

	QueueDiscardedTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ingest_queue_discarded_total",
			Help: "Total number of inbound payloads discarded before enqueueing",
		},
		[]string{"reason"},
	)
}

// The nil guards below keep library code safe when InitMetrics was never
// called (unit tests).

// ObserveDBStatement records the duration of a database statement
func ObserveDBStatement(verb string, elapsed time.Duration) {
	if DbStatementDuration.MetricVec == nil {
		return
	}
	DbStatementDuration.WithLabelValues(verb).Observe(elapsed.Seconds())
}

// RecordBatch increments the batch counter for a channel and outcome
func RecordBatch(channel, outcome string, elapsed time.Duration) {
	if IngestBatchesTotal.MetricVec == nil {
		return
	}
	IngestBatchesTotal.WithLabelValues(channel, outcome).Inc()
	IngestBatchDuration.Observe(elapsed.Seconds())
}

// RecordCandidate increments the candidate counter for a result
// (created, updated, rejected, failed)
func RecordCandidate(result string) {
	if CandidatesTotal.MetricVec == nil {
		return
	}
	CandidatesTotal.WithLabelValues(result).Inc()
}

// RecordDeactivations adds to the reconciliation deactivation counter
func RecordDeactivations(n int) {
	if ProductsDeactivatedTotal == nil {
		return
	}
	ProductsDeactivatedTotal.Add(float64(n))
}

// RecordExtraction records one extraction call
func RecordExtraction(outcome string, elapsed time.Duration) {
	if ExtractionCallsTotal.MetricVec == nil {
		return
	}
	ExtractionCallsTotal.WithLabelValues(outcome).Inc()
	ExtractionDuration.Observe(elapsed.Seconds())
}

// SetQueueDepth updates the queue depth gauge
func SetQueueDepth(depth int) {
	if QueueDepthGauge == nil {
		return
	}
	QueueDepthGauge.Set(float64(depth))
}

// RecordQueueDiscard increments the discard counter for a reason
func RecordQueueDiscard(reason string) {
	if QueueDiscardedTotal.MetricVec == nil {
		return
	}
	QueueDiscardedTotal.WithLabelValues(reason).Inc()
}
