package repository

import (
	"time"

	"order_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	// GetByDateAndCustomer takes a row lock so that concurrent merges into
	// the same order serialize for the duration of the transaction.
	GetByDateAndCustomer(date time.Time, customerID uint) (*models.Order, error)
	CountByDate(date time.Time) (int64, error)
	Update(order *models.Order) error
	Delete(id uint) error
	GetByDate(date time.Time) ([]models.Order, error)
	GetByDateRange(startDate, endDate time.Time) ([]models.Order, error)
	GetRecent(limit int) ([]models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByDateAndCustomer(date time.Time, customerID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_date = ? AND customer_id = ?", date, customerID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) CountByDate(date time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("order_date = ?", date).Count(&count).Error
	return count, err
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) Delete(id uint) error {
	return r.db.Delete(&models.Order{}, id).Error
}

func (r *orderRepository) GetByDate(date time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("order_date = ?", date).Order("id").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByDateRange(startDate, endDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("order_date BETWEEN ? AND ?", startDate, endDate).
		Order("order_date, id").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetRecent(limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}
