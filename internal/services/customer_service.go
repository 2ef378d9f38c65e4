package services

import (
	"errors"

	"order_manager/internal/models"
	"order_manager/internal/repository"

	"gorm.io/gorm"
)

type CustomerService interface {
	CreateCustomer(customer *models.Customer) error
	GetCustomerByID(id uint) (*models.Customer, error)
	UpdateCustomer(customer *models.Customer) error
	DeleteCustomer(id uint) error
	GetAllCustomers() ([]models.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(customer *models.Customer) error {
	if customer.Name == "" {
		return NewValidationError("customer name is required")
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return NewStoreError(err)
	}
	return nil
}

func (s *customerService) GetCustomerByID(id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("customer %d not found", id)
		}
		return nil, NewStoreError(err)
	}
	return customer, nil
}

func (s *customerService) UpdateCustomer(customer *models.Customer) error {
	if customer.ID == 0 {
		return NewValidationError("customer id is required")
	}
	if customer.Name == "" {
		return NewValidationError("customer name is required")
	}
	if err := s.customerRepo.Update(customer); err != nil {
		return NewStoreError(err)
	}
	return nil
}

func (s *customerService) DeleteCustomer(id uint) error {
	if id == 0 {
		return NewValidationError("customer id is required")
	}
	if err := s.customerRepo.Delete(id); err != nil {
		return NewStoreError(err)
	}
	return nil
}

func (s *customerService) GetAllCustomers() ([]models.Customer, error) {
	customers, err := s.customerRepo.GetAll()
	if err != nil {
		return nil, NewStoreError(err)
	}
	return customers, nil
}
