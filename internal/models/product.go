package models

import (
	"fmt"
	"time"
)

// Inventory models
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Name      string    `gorm:"size:100;not null;unique" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID uint `gorm:"primaryKey" json:"-"`
	// Code is the public, human-readable product reference (REP-000123).
	// Derived from the surrogate key right after insert, so the store owns
	// the sequence and no in-process counter exists.
	Code      string    `gorm:"size:20;not null;uniqueIndex" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Category  string    `gorm:"size:100;not null;index" json:"category"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	UnitCost  *float64  `json:"unit_cost,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductCodePrefix prefixes every generated product code.
const ProductCodePrefix = "REP"

// FormatProductCode renders the display code for a product surrogate id.
func FormatProductCode(id uint) string {
	return fmt.Sprintf("%s-%06d", ProductCodePrefix, id)
}
