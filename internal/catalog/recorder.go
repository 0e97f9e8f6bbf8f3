package catalog

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
)

// priceEpsilon bounds the numeric comparison that decides whether a price
// actually changed. Prices are currency amounts; anything below a tenth of a
// cent is storage noise, not a change.
const priceEpsilon = 0.001

// Recorder persists matched and new products and maintains the append-only
// price history.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRecorder creates a recorder bound to a database handle
func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Update refreshes an existing product from a candidate. Attributes are
// written unconditionally; a price-history row is appended only when the
// incoming price differs from the most recently recorded one.
func (r *Recorder) Update(existing *model.Product, name, modelName, color, storage, variant, conditionDetail string, price float64, actor string) error {
	var variantPtr *string
	if variant != "" {
		variantPtr = &variant
	}

	updates := map[string]interface{}{
		"name":             name,
		"model":            modelName,
		"color":            color,
		"storage":          storage,
		"variant":          variantPtr,
		"condition_detail": conditionDetail,
		"price":            price,
		"is_active":        true,
		"updated_at":       time.Now(),
	}
	if err := r.db.Model(&model.Product{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update product %d: %w", existing.ID, err)
	}

	var last model.PriceHistory
	err := r.db.
		Where("product_id = ?", existing.ID).
		Order("recorded_at DESC, id DESC").
		First(&last).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		// No history yet; record the current price as the baseline.
		if err := r.appendHistory(existing.ID, existing.SupplierID, price); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("read last price for product %d: %w", existing.ID, err)
	case math.Abs(last.Price-price) > priceEpsilon:
		if err := r.appendHistory(existing.ID, existing.SupplierID, price); err != nil {
			return err
		}
	}

	r.audit(actor, "product.update", existing.ID, fmt.Sprintf("%s @ %.2f", name, price))
	return nil
}

// Create inserts a new product and its initial price-history row. There is
// no previous price to compare against, so the history row is unconditional.
func (r *Recorder) Create(supplierID uint, productType, name, modelName, color, storage, condition, conditionDetail, variant string, price float64, actor string) (*model.Product, error) {
	var variantPtr *string
	if variant != "" {
		variantPtr = &variant
	}

	product := model.Product{
		SupplierID:      supplierID,
		Name:            name,
		Model:           modelName,
		Color:           color,
		Storage:         storage,
		Condition:       condition,
		ConditionDetail: conditionDetail,
		Variant:         variantPtr,
		Price:           price,
		ProductType:     productType,
		IsActive:        true,
	}
	if err := r.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product %q: %w", name, err)
	}

	if err := r.appendHistory(product.ID, supplierID, price); err != nil {
		return nil, err
	}

	r.audit(actor, "product.create", product.ID, fmt.Sprintf("%s @ %.2f", name, price))
	return &product, nil
}

func (r *Recorder) appendHistory(productID, supplierID uint, price float64) error {
	row := model.PriceHistory{
		ProductID:  productID,
		SupplierID: supplierID,
		Price:      price,
		RecordedAt: time.Now(),
	}
	if err := r.db.Create(&row).Error; err != nil {
		return fmt.Errorf("append price history for product %d: %w", productID, err)
	}
	return nil
}

// audit writes a best-effort trace entry. Failures are logged and swallowed;
// the product write they describe must stand.
func (r *Recorder) audit(actor, action string, entityID uint, detail string) {
	entry := model.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: "product",
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		r.log.Warn("Audit entry write failed",
			zap.String("action", action),
			zap.Uint("entity_id", entityID),
			zap.Error(err))
	}
}

// SaveSnapshot stores the raw list text for audit purposes, replacing any
// snapshot already taken for the supplier on the same calendar day.
func (r *Recorder) SaveSnapshot(supplierID uint, rawText string) error {
	if rawText == "" {
		return nil
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := r.db.
		Where("supplier_id = ? AND processed_at >= ? AND processed_at < ?", supplierID, dayStart, dayStart.Add(24*time.Hour)).
		Delete(&model.RawListSnapshot{}).Error; err != nil {
		return fmt.Errorf("replace snapshot for supplier %d: %w", supplierID, err)
	}

	snapshot := model.RawListSnapshot{
		SupplierID:  supplierID,
		RawText:     rawText,
		ProcessedAt: now,
	}
	if err := r.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("save snapshot for supplier %d: %w", supplierID, err)
	}
	return nil
}

// PruneHistory removes price-history rows older than the cutoff. This is the
// only sanctioned deletion from the price-history table.
func (r *Recorder) PruneHistory(olderThan time.Time) (int64, error) {
	result := r.db.Where("recorded_at < ?", olderThan).Delete(&model.PriceHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune price history: %w", result.Error)
	}
	return result.RowsAffected, nil
}
