package repository

import (
	"order_manager/internal/models"

	"gorm.io/gorm"
)

type OrderItemRepository interface {
	Create(orderItem *models.OrderItem) error
	GetByOrderID(orderID uint) ([]*models.OrderItem, error)
	GetByOrderAndProduct(orderID, productID uint) (*models.OrderItem, error)
	// AddQty merges one incoming line into the existing row: quantity is
	// added with a single UPDATE expression (no read-then-write window)
	// and price is overwritten with the incoming value.
	AddQty(orderID, productID uint, qty int, price float64) error
	DeleteByOrderID(orderID uint) error
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(orderItem *models.OrderItem) error {
	return r.db.Create(orderItem).Error
}

func (r *orderItemRepository) GetByOrderID(orderID uint) ([]*models.OrderItem, error) {
	var orderItems []*models.OrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&orderItems).Error
	if err != nil {
		return nil, err
	}
	return orderItems, nil
}

func (r *orderItemRepository) GetByOrderAndProduct(orderID, productID uint) (*models.OrderItem, error) {
	var orderItem models.OrderItem
	err := r.db.Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&orderItem).Error
	if err != nil {
		return nil, err
	}
	return &orderItem, nil
}

func (r *orderItemRepository) AddQty(orderID, productID uint, qty int, price float64) error {
	return r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Updates(map[string]interface{}{
			"qty":   gorm.Expr("qty + ?", qty),
			"price": price,
		}).Error
}

func (r *orderItemRepository) DeleteByOrderID(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}
