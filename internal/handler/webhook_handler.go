package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/igestorphone/igestorphone-sub000/internal/catalog"
	"github.com/igestorphone/igestorphone-sub000/internal/ingest"
	"github.com/igestorphone/igestorphone-sub000/internal/model"
	"github.com/igestorphone/igestorphone-sub000/pkg/config"
	"github.com/igestorphone/igestorphone-sub000/pkg/database"
	"github.com/igestorphone/igestorphone-sub000/pkg/logger"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

// WebhookPayload is the passive-channel inbound message
type WebhookPayload struct {
	FromIdentifier string    `json:"from_identifier"`
	RawText        string    `json:"raw_text"`
	ReceivedAt     time.Time `json:"received_at"`
	ListKind       string    `json:"list_kind"`
}

// WebhookHandler accepts inbound chat payloads and feeds the ingestion queue
type WebhookHandler struct {
	queue *ingest.Queue
	cfg   *config.WebhookConfig
}

// NewWebhookHandler creates the handler bound to the queue
func NewWebhookHandler(queue *ingest.Queue, cfg *config.WebhookConfig) *WebhookHandler {
	return &WebhookHandler{queue: queue, cfg: cfg}
}

// Receive validates an inbound payload and enqueues it. Payloads from
// unknown senders or that do not look like a product list are discarded
// without enqueueing; the channel is fire-and-forget, so discards still
// answer 204. With no secret configured the route refuses everything
// rather than accepting unauthenticated payloads.
func (h *WebhookHandler) Receive(c echo.Context) error {
	log := logger.FromEcho(c)

	if h.cfg.Secret == "" {
		log.Warn("Webhook secret not configured; refusing request")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "webhook is not configured"})
	}
	if c.Request().Header.Get("X-Webhook-Secret") != h.cfg.Secret {
		log.Warn("Webhook secret mismatch")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid webhook secret"})
	}

	var payload WebhookPayload
	if err := c.Bind(&payload); err != nil {
		log.Error("Invalid webhook payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	supplier, err := resolveSupplierByIdentifier(payload.FromIdentifier)
	if err != nil {
		log.Warn("Webhook from unknown sender; discarded",
			zap.String("from", payload.FromIdentifier))
		prometheus.RecordQueueDiscard("unknown_sender")
		return c.NoContent(http.StatusNoContent)
	}

	if !ingest.LooksLikeProductList(payload.RawText, h.cfg.MinListLength, h.cfg.MinPriceTokens, h.cfg.MinProductTokens) {
		log.Info("Webhook payload does not look like a product list; discarded",
			zap.Uint("supplier_id", supplier.ID),
			zap.Int("length", len(payload.RawText)))
		prometheus.RecordQueueDiscard("not_a_list")
		return c.NoContent(http.StatusNoContent)
	}

	listKind := payload.ListKind
	if listKind == "" {
		listKind = catalog.ListKindMixed
	}

	receivedAt := payload.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	err = h.queue.Enqueue(ingest.Payload{
		SupplierID: supplier.ID,
		ListKind:   listKind,
		RawText:    payload.RawText,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		log.Error("Ingestion queue full; payload dropped",
			zap.Uint("supplier_id", supplier.ID))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "ingestion queue is full"})
	}

	log.Info("Webhook payload enqueued",
		zap.Uint("supplier_id", supplier.ID),
		zap.String("list_kind", listKind),
		zap.Int("queue_depth", h.queue.Depth()))
	return c.JSON(http.StatusAccepted, echo.Map{"status": "enqueued"})
}

// resolveSupplierByIdentifier maps a sender identifier (phone or chat id) to
// an active supplier
func resolveSupplierByIdentifier(identifier string) (*model.Supplier, error) {
	if identifier == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var supplier model.Supplier
	err := database.GetDB().
		Where("phone = ? AND is_active = ?", identifier, true).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}
