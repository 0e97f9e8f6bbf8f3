package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
	"github.com/igestorphone/igestorphone-sub000/pkg/database"
	"github.com/igestorphone/igestorphone-sub000/pkg/logger"
)

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Notes         string `json:"notes"`
	IsActive      bool   `json:"is_active"`
}

// ListSuppliers handles retrieving all suppliers with optional filtering
func ListSuppliers(c echo.Context) error {
	log := logger.FromEcho(c)

	db := database.GetDB()
	var suppliers []model.Supplier

	query := db
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}
	if name := c.QueryParam("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}

	if result := query.Order("name").Find(&suppliers); result.Error != nil {
		log.Error("Failed to list suppliers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve suppliers",
		})
	}

	return c.JSON(http.StatusOK, suppliers)
}

// GetSupplier handles retrieving a single supplier by ID
func GetSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, id); result.Error != nil {
		log.Warn("Supplier not found", zap.String("supplier_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supplier not found",
		})
	}

	return c.JSON(http.StatusOK, supplier)
}

// CreateSupplier handles creating a new supplier
func CreateSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Creating new supplier")

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Supplier name is required",
		})
	}

	supplier := model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Notes:         req.Notes,
		IsActive:      true,
	}

	if result := database.GetDB().Create(&supplier); result.Error != nil {
		log.Error("Failed to create supplier",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create supplier",
		})
	}

	log.Info("Supplier created successfully",
		zap.Uint("supplier_id", supplier.ID),
		zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier handles updating an existing supplier
func UpdateSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supplier not found",
		})
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Notes = req.Notes
	supplier.IsActive = req.IsActive

	if result := database.GetDB().Save(&supplier); result.Error != nil {
		log.Error("Failed to update supplier",
			zap.String("supplier_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update supplier",
		})
	}

	return c.JSON(http.StatusOK, supplier)
}

// DeactivateSupplier soft-deactivates a supplier and cascades the
// deactivation to its products
func DeactivateSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")
	log.Info("Deactivating supplier", zap.String("supplier_id", id))

	db := database.GetDB()

	var supplier model.Supplier
	if result := db.First(&supplier, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supplier not found",
		})
	}

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Supplier{}).
			Where("id = ?", supplier.ID).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Product{}).
			Where("supplier_id = ? AND is_active = ?", supplier.ID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error
	})
	if err != nil {
		log.Error("Failed to deactivate supplier",
			zap.String("supplier_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to deactivate supplier",
		})
	}

	log.Info("Supplier deactivated with product cascade",
		zap.Uint("supplier_id", supplier.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Supplier deactivated",
	})
}
