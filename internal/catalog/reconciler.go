package catalog

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

// Reconciler retires catalog entries absent from the latest batch. Suppliers
// resend their entire current offering on every list, so anything active
// inside the batch's scope whose identity key is missing from the batch is
// no longer offered.
type Reconciler struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewReconciler creates a reconciler bound to a database handle
func NewReconciler(db *gorm.DB, log *zap.Logger) *Reconciler {
	return &Reconciler{db: db, log: log}
}

// Reconcile deactivates active products of the given supplier, product type
// and condition class whose identity key does not appear in keysInList. All
// deactivations are applied as one batched update. The operation is a set
// difference, so running it twice over the same batch is a no-op the second
// time. Returns the number of deactivated rows.
func (r *Reconciler) Reconcile(supplierID uint, productType string, conditionClass []string, keysInList map[string]struct{}) (int, error) {
	if supplierID == 0 || productType == "" || len(conditionClass) == 0 {
		// An unresolved scope would deactivate rows the batch knows nothing
		// about; skip instead.
		r.log.Warn("Reconciliation skipped: unresolved scope",
			zap.Uint("supplier_id", supplierID),
			zap.String("product_type", productType))
		return 0, nil
	}

	var active []model.Product
	err := r.db.
		Where("supplier_id = ? AND product_type = ? AND is_active = ? AND condition IN ?",
			supplierID, productType, true, conditionClass).
		Find(&active).Error
	if err != nil {
		return 0, fmt.Errorf("load active products for reconciliation: %w", err)
	}

	var stale []uint
	for i := range active {
		key := ProductKey(active[i].Model, active[i].Color, active[i].Storage, active[i].Condition)
		if _, present := keysInList[key]; !present {
			stale = append(stale, active[i].ID)
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}

	err = r.db.Model(&model.Product{}).
		Where("id IN ?", stale).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
	if err != nil {
		return 0, fmt.Errorf("deactivate %d stale products: %w", len(stale), err)
	}

	prometheus.RecordDeactivations(len(stale))
	r.log.Info("Reconciliation deactivated stale products",
		zap.Uint("supplier_id", supplierID),
		zap.String("product_type", productType),
		zap.Strings("condition_class", conditionClass),
		zap.Int("deactivated", len(stale)))
	return len(stale), nil
}
