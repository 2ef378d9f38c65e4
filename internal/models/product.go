package models

import (
	"time"

	"gorm.io/gorm"
)

// Product.UnitPrice is a catalog default; the price actually charged
// lives on each OrderItem.
type Product struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null"`
	UnitPrice float64        `json:"unit_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
