package models

import (
	"time"
)

// Order is the one record per (order_date, customer) pair. The composite
// unique index is what makes concurrent create-or-merge calls converge on
// a single row. Orders are hard-deleted: a soft-delete tombstone would
// keep occupying the unique index and block re-creating the pair.
type Order struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderCode   string    `json:"order_code" gorm:"uniqueIndex;not null"`
	OrderDate   time.Time `json:"order_date" gorm:"not null;uniqueIndex:idx_orders_date_customer"`
	CustomerID  uint      `json:"customer_id" gorm:"not null;uniqueIndex:idx_orders_date_customer"`
	Subtotal    float64   `json:"subtotal"`
	DeliveryFee float64   `json:"delivery_fee"`
	Total       float64   `json:"total"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
