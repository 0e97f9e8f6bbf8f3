package model

import (
	"time"
)

// AuditLog is a best-effort trace of catalog mutations. A failed audit write
// never rolls back the product write it describes.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Actor      string    `json:"actor" gorm:"type:varchar(60);not null"`
	Action     string    `json:"action" gorm:"type:varchar(40);index;not null"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(40);not null"`
	EntityID   uint      `json:"entity_id" gorm:"index"`
	Detail     string    `json:"detail" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}
