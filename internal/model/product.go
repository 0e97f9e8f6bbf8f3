package model

import (
	"time"
)

// Canonical product conditions. Every raw condition label from a supplier
// list is bucketed into exactly one of these; the original label survives in
// ConditionDetail.
const (
	ConditionNew         = "New"
	ConditionUsedGood    = "Used-Good"
	ConditionUsed        = "Used"
	ConditionRefurbished = "Refurbished"
)

// Product types recognized by the catalog
const (
	ProductTypeApple   = "apple"
	ProductTypeAndroid = "android"
)

// Product represents a catalog entry owned by a supplier.
// Within one supplier and product type at most one active row may exist per
// (model, color, storage, condition) identity.
type Product struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SupplierID      uint      `json:"supplier_id" gorm:"index:idx_products_identity;not null"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null"`
	Model           string    `json:"model" gorm:"type:varchar(120);index:idx_products_identity"`
	Color           string    `json:"color" gorm:"type:varchar(60);index:idx_products_identity"`
	Storage         string    `json:"storage" gorm:"type:varchar(20);index:idx_products_identity"`
	Condition       string    `json:"condition" gorm:"type:varchar(20);index:idx_products_identity;not null"`
	ConditionDetail string    `json:"condition_detail" gorm:"type:varchar(60)"`
	Variant         *string   `json:"variant" gorm:"type:varchar(30)"`
	Price           float64   `json:"price" gorm:"not null"`
	ProductType     string    `json:"product_type" gorm:"type:varchar(20);index:idx_products_identity;not null"`
	IsActive        bool      `json:"is_active" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
