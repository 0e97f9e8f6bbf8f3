package model

import (
	"time"
)

// PriceHistory is an append-only record of price changes for a product.
// A new row is written only when the incoming price differs from the most
// recent recorded price; rows are removed only by retention pruning or when
// their product is hard-deleted.
type PriceHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProductID  uint      `json:"product_id" gorm:"index;not null"`
	SupplierID uint      `json:"supplier_id" gorm:"index;not null"`
	Price      float64   `json:"price" gorm:"not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index;not null"`
}
