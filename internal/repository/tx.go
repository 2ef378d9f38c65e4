package repository

import (
	"gorm.io/gorm"
)

// Repositories bundles the data access interfaces bound to one gorm
// handle, so a service can run a multi-statement pipeline against a
// single transaction.
type Repositories struct {
	Orders     OrderRepository
	OrderItems OrderItemRepository
	Customers  CustomerRepository
	Products   ProductRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Orders:     NewOrderRepository(db),
		OrderItems: NewOrderItemRepository(db),
		Customers:  NewCustomerRepository(db),
		Products:   NewProductRepository(db),
	}
}

// TxManager runs a function against repositories bound to one database
// transaction. Returning an error rolls the transaction back.
type TxManager interface {
	Do(fn func(repos Repositories) error) error
}

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) Do(fn func(repos Repositories) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
