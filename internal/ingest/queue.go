package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/igestorphone/igestorphone-sub000/internal/extraction"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

// ErrQueueFull is returned by Enqueue when the queue is at capacity
var ErrQueueFull = errors.New("ingestion queue is full")

// Payload is one inbound raw list waiting to be processed
type Payload struct {
	SupplierID uint
	ListKind   string
	RawText    string
	ReceivedAt time.Time
}

// Queue serializes passive-channel list processing: payloads are accepted at
// the tail of a bounded channel and consumed by a single goroutine, so two
// lists never interleave. A rate limiter inserts a fixed cooldown between
// consecutive completions to respect the extraction API's rate constraints.
type Queue struct {
	payloads  chan Payload
	extractor extraction.Extractor
	pipeline  *Pipeline
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewQueue creates a queue with the given capacity and cooldown
func NewQueue(capacity int, cooldown time.Duration, extractor extraction.Extractor, pipeline *Pipeline, log *zap.Logger) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	limit := rate.Inf
	if cooldown > 0 {
		limit = rate.Every(cooldown)
	}
	return &Queue{
		payloads:  make(chan Payload, capacity),
		extractor: extractor,
		pipeline:  pipeline,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

// Enqueue appends a payload at the tail without blocking. When the queue is
// full the payload is dropped and ErrQueueFull returned; the sender decides
// what to do with it.
func (q *Queue) Enqueue(p Payload) error {
	select {
	case q.payloads <- p:
		prometheus.SetQueueDepth(len(q.payloads))
		return nil
	default:
		prometheus.RecordQueueDiscard("queue_full")
		return ErrQueueFull
	}
}

// Depth reports the number of pending payloads
func (q *Queue) Depth() int {
	return len(q.payloads)
}

// Start runs the consumer loop until the context is canceled. It is the
// queue's only reader.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		q.log.Info("Ingestion queue consumer started")
		for {
			select {
			case <-ctx.Done():
				q.log.Info("Ingestion queue consumer stopped")
				return
			case payload := <-q.payloads:
				prometheus.SetQueueDepth(len(q.payloads))
				q.process(ctx, payload)
				if err := q.limiter.Wait(ctx); err != nil {
					return
				}
			}
		}
	}()
}

// process runs one payload through extraction and the full pipeline. An
// extraction failure aborts the payload before any persistence; pipeline
// errors are already isolated per candidate.
func (q *Queue) process(ctx context.Context, payload Payload) {
	log := q.log.With(
		zap.Uint("supplier_id", payload.SupplierID),
		zap.String("list_kind", payload.ListKind))

	result, err := q.extractor.ExtractProducts(ctx, payload.RawText, payload.ListKind)
	if err != nil {
		log.Error("Extraction failed; payload dropped", zap.Error(err))
		prometheus.RecordBatch("webhook", "extraction_failed", 0)
		return
	}

	if !result.Valid || len(result.ValidatedProducts) == 0 {
		// Nothing extractable is "nothing to reconcile", not a reason to
		// touch the catalog.
		log.Warn("Extraction produced no valid products; payload dropped",
			zap.Strings("errors", result.Errors))
		prometheus.RecordBatch("webhook", "empty", 0)
		return
	}

	summary, err := q.pipeline.Run(ctx, &Request{
		SupplierID:  payload.SupplierID,
		ListKind:    payload.ListKind,
		RawListText: payload.RawText,
		Candidates:  result.ValidatedProducts,
		Channel:     "webhook",
		Actor:       "webhook",
	})
	if err != nil {
		log.Error("Pipeline run failed", zap.Error(err))
		return
	}

	log.Info("Webhook list processed",
		zap.Int("saved", summary.SavedCount),
		zap.Int("created", summary.CreatedCount),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("deactivated", summary.DeactivatedCount),
		zap.Int("rejected", len(summary.Rejected)))
}
