package models

import (
	"fmt"
	"time"
)

// Sales models
type Sale struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// SaleNumber is the receipt code handed to the customer (VENT-000042).
	// Like product codes it is derived from the surrogate key inside the
	// creating transaction, which makes it unique and monotone without a
	// max-scan over existing rows.
	SaleNumber string     `gorm:"size:20;not null;uniqueIndex" json:"sale_number"`
	TotalItems int        `gorm:"not null" json:"total_items"`
	Items      []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SaleItem is owned exclusively by its Sale and is read-only after creation.
// ProductName and Category are snapshots taken at sale time; later product
// edits must not rewrite history.
type SaleItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SaleID      uint      `gorm:"not null;index" json:"sale_id"`
	ProductID   string    `gorm:"size:20;not null;index" json:"product_id"`
	ProductName string    `gorm:"size:255;not null" json:"product_name"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaleNumberPrefix prefixes every generated sale number.
const SaleNumberPrefix = "VENT"

// FormatSaleNumber renders the receipt code for a sale surrogate id.
func FormatSaleNumber(id uint) string {
	return fmt.Sprintf("%s-%06d", SaleNumberPrefix, id)
}
