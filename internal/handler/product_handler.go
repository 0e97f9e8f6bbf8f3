package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/igestorphone/igestorphone-sub000/internal/catalog"
	"github.com/igestorphone/igestorphone-sub000/internal/model"
	"github.com/igestorphone/igestorphone-sub000/pkg/database"
	"github.com/igestorphone/igestorphone-sub000/pkg/logger"
)

// ListProducts handles retrieving catalog products with optional filtering
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	db := database.GetDB()
	var products []model.Product

	query := db
	if supplierID := c.QueryParam("supplier_id"); supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if productType := c.QueryParam("product_type"); productType != "" {
		query = query.Where("product_type = ?", productType)
	}
	if condition := c.QueryParam("condition"); condition != "" {
		query = query.Where("condition = ?", condition)
	}
	// Catalog views show active products unless explicitly asked otherwise.
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	} else {
		query = query.Where("is_active = ?", true)
	}

	if result := query.Order("updated_at DESC").Find(&products); result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var product model.Product
	if result := database.GetDB().First(&product, id); result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	return c.JSON(http.StatusOK, product)
}

// GetPriceHistory returns the recorded price changes for a product, most
// recent first
func GetPriceHistory(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var product model.Product
	if result := database.GetDB().First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	var history []model.PriceHistory
	result := database.GetDB().
		Where("product_id = ?", product.ID).
		Order("recorded_at DESC, id DESC").
		Find(&history)
	if result.Error != nil {
		log.Error("Failed to load price history",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve price history",
		})
	}

	return c.JSON(http.StatusOK, history)
}

// PruneHistoryRequest defines the retention pruning request
type PruneHistoryRequest struct {
	OlderThanDays int `json:"older_than_days"`
}

// PrunePriceHistory removes price-history rows older than the requested
// retention window
func PrunePriceHistory(c echo.Context) error {
	log := logger.FromEcho(c)

	var req PruneHistoryRequest
	if err := c.Bind(&req); err != nil || req.OlderThanDays <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "older_than_days must be a positive integer",
		})
	}

	cutoff := time.Now().AddDate(0, 0, -req.OlderThanDays)
	recorder := catalog.NewRecorder(database.GetDB(), log)
	pruned, err := recorder.PruneHistory(cutoff)
	if err != nil {
		log.Error("Price history pruning failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to prune price history",
		})
	}

	log.Info("Price history pruned",
		zap.Int64("rows", pruned),
		zap.Time("cutoff", cutoff))
	return c.JSON(http.StatusOK, echo.Map{
		"pruned": pruned,
		"cutoff": cutoff,
	})
}

// ListAuditLogs returns recent catalog audit entries
func ListAuditLogs(c echo.Context) error {
	log := logger.FromEcho(c)

	var entries []model.AuditLog
	query := database.GetDB().Order("id DESC").Limit(200)
	if action := c.QueryParam("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	if result := query.Find(&entries); result.Error != nil {
		log.Error("Failed to list audit logs", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve audit logs",
		})
	}

	return c.JSON(http.StatusOK, entries)
}
