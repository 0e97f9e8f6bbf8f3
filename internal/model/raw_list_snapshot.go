package model

import (
	"time"
)

// RawListSnapshot keeps the raw text of the last list processed for a
// supplier on a given day. It exists as an audit/reconstruction aid only and
// plays no part in matching. At most one snapshot per supplier per calendar
// day; a later ingestion on the same day replaces the earlier one.
type RawListSnapshot struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SupplierID  uint      `json:"supplier_id" gorm:"index;not null"`
	RawText     string    `json:"raw_text" gorm:"type:text"`
	ProcessedAt time.Time `json:"processed_at" gorm:"index;not null"`
}
