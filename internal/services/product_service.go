package services

import (
	"errors"

	"order_manager/internal/models"
	"order_manager/internal/repository"

	"gorm.io/gorm"
)

type ProductService interface {
	CreateProduct(product *models.Product) error
	GetProductByID(id uint) (*models.Product, error)
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uint) error
	GetAllProducts() ([]models.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(product *models.Product) error {
	if product.Name == "" {
		return NewValidationError("product name is required")
	}
	if err := s.productRepo.Create(product); err != nil {
		return NewStoreError(err)
	}
	return nil
}

func (s *productService) GetProductByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product %d not found", id)
		}
		return nil, NewStoreError(err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(product *models.Product) error {
	if product.ID == 0 {
		return NewValidationError("product id is required")
	}
	if product.Name == "" {
		return NewValidationError("product name is required")
	}
	if err := s.productRepo.Update(product); err != nil {
		return NewStoreError(err)
	}
	return nil
}

func (s *productService) DeleteProduct(id uint) error {
	if id == 0 {
		return NewValidationError("product id is required")
	}
	if err := s.productRepo.Delete(id); err != nil {
		return NewStoreError(err)
	}
	return nil
}

func (s *productService) GetAllProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, NewStoreError(err)
	}
	return products, nil
}
