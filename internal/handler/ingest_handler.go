package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/igestorphone/igestorphone-sub000/internal/extraction"
	"github.com/igestorphone/igestorphone-sub000/internal/ingest"
	"github.com/igestorphone/igestorphone-sub000/pkg/logger"
)

// IngestRequest is the synchronous ingestion entry point payload. Callers
// either submit pre-extracted candidates or raw list text for extraction.
type IngestRequest struct {
	SupplierID        uint                   `json:"supplier_id"`
	SupplierName      string                 `json:"supplier_name"`
	SupplierContact   string                 `json:"supplier_contact"`
	ProductType       string                 `json:"product_type"`
	ListKind          string                 `json:"list_kind" validate:"required"`
	RawListText       string                 `json:"raw_list_text"`
	ValidatedProducts []extraction.Candidate `json:"validated_products"`
}

// IngestHandler runs synchronous batch ingestion
type IngestHandler struct {
	pipeline  *ingest.Pipeline
	extractor extraction.Extractor
}

// NewIngestHandler creates the handler with its pipeline and extractor
func NewIngestHandler(pipeline *ingest.Pipeline, extractor extraction.Extractor) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, extractor: extractor}
}

// Ingest processes one supplier list end to end and returns the batch
// summary. Candidates may come pre-extracted in the request; otherwise the
// raw text is sent to the extraction collaborator first.
func (h *IngestHandler) Ingest(c echo.Context) error {
	log := logger.FromEcho(c)

	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.SupplierID == 0 && req.SupplierName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "supplier_id or supplier_name is required",
		})
	}

	candidates := req.ValidatedProducts
	if len(candidates) == 0 && req.RawListText != "" {
		result, err := h.extractor.ExtractProducts(c.Request().Context(), req.RawListText, req.ListKind)
		if err != nil {
			// Extraction failed before any persistence; the caller may retry.
			log.Error("Extraction failed", zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{
				"error":     "extraction failed",
				"detail":    err.Error(),
				"retryable": true,
			})
		}
		candidates = result.ValidatedProducts
	}

	if len(candidates) == 0 {
		// Distinct from a transport/extraction error: the list simply held
		// nothing usable.
		return c.JSON(http.StatusOK, echo.Map{
			"message":     "no valid products found",
			"saved_count": 0,
		})
	}

	summary, err := h.pipeline.Run(c.Request().Context(), &ingest.Request{
		SupplierID:      req.SupplierID,
		SupplierName:    req.SupplierName,
		SupplierContact: req.SupplierContact,
		ProductType:     req.ProductType,
		ListKind:        req.ListKind,
		RawListText:     req.RawListText,
		Candidates:      candidates,
		Channel:         "api",
		Actor:           actorFromContext(c),
	})
	if err != nil {
		log.Error("Ingestion batch failed", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, summary)
}

// actorFromContext names the authenticated caller for audit entries
func actorFromContext(c echo.Context) string {
	if email, ok := c.Get("email").(string); ok && email != "" {
		return email
	}
	return "api"
}
