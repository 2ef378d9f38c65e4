package models

import (
	"time"
)

// OrderItem holds the merged quantity and the latest unit price for one
// product within one order. At most one row exists per (order, product).
type OrderItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_order_items_order_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_order_items_order_product"`
	Qty       int       `json:"qty" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
