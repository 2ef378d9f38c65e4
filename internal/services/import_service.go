package services

import (
	"errors"
	"log"
	"time"

	"order_manager/internal/models"
	"order_manager/internal/repository"

	"gorm.io/gorm"
)

// ImportRow is one flat line of a tabular import.
type ImportRow struct {
	Date            time.Time
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	ProductName     string
	Qty             int
	Price           float64
	DeliveryFee     *float64
	Notes           string
}

// ImportResult reports what a batch actually accomplished. A partially
// failed batch returns counters for exactly the groups that succeeded.
type ImportResult struct {
	OrdersProcessed int `json:"orders_processed"`
	Created         int `json:"created"`
	Merged          int `json:"merged"`
	ItemsInserted   int `json:"items_inserted"`
}

type ImportService interface {
	ImportRows(rows []ImportRow) (*ImportResult, error)
}

type importService struct {
	repos  repository.Repositories
	orders OrderService
}

func NewImportService(repos repository.Repositories, orders OrderService) ImportService {
	return &importService{repos: repos, orders: orders}
}

// resolveCache is the call-scoped name→id memo for one batch. It is
// created per ImportRows call and discarded with it; nothing here is
// shared between calls.
type resolveCache struct {
	customers map[string]uint
	products  map[string]uint
}

func newResolveCache() *resolveCache {
	return &resolveCache{
		customers: make(map[string]uint),
		products:  make(map[string]uint),
	}
}

type importLine struct {
	productName string
	qty         int
	price       float64
}

type importGroup struct {
	date            time.Time
	customerName    string
	customerPhone   string
	customerAddress string
	deliveryFee     *float64
	notes           string
	lines           []importLine
}

// ImportRows groups flat rows by (date, customer name) and drives each
// group through the same resolver → merge → recompute pipeline as the
// interactive path. Entity creation is a durable side effect even for
// groups that later fail; a failing group is logged and skipped, never
// fatal to the rest of the batch.
func (s *importService) ImportRows(rows []ImportRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, NewValidationError("import rows are required")
	}

	groups := groupRows(rows)
	cache := newResolveCache()
	result := &ImportResult{}

	for _, group := range groups {
		customerID, err := s.resolveCustomer(cache, group)
		if err != nil {
			log.Printf("import: skipping group (%s, %q): %v",
				group.date.Format("2006-01-02"), group.customerName, err)
			continue
		}

		items := make([]OrderItemInput, 0, len(group.lines))
		for _, line := range group.lines {
			productID, err := s.resolveProduct(cache, line.productName)
			if err != nil {
				log.Printf("import: skipping line %q for %q: %v",
					line.productName, group.customerName, err)
				continue
			}
			items = append(items, OrderItemInput{
				ProductID: productID,
				Qty:       line.qty,
				Price:     line.price,
			})
		}
		if len(items) == 0 {
			continue
		}

		orderResult, err := s.orders.CreateOrMerge(CreateOrMergeInput{
			Date:        group.date,
			CustomerID:  customerID,
			Items:       items,
			DeliveryFee: group.deliveryFee,
			Notes:       group.notes,
		})
		if err != nil {
			log.Printf("import: order failed for (%s, %q): %v",
				group.date.Format("2006-01-02"), group.customerName, err)
			continue
		}

		result.OrdersProcessed++
		if orderResult.Created {
			result.Created++
		} else {
			result.Merged++
		}
		result.ItemsInserted += orderResult.ItemsMerged
	}

	return result, nil
}

// groupRows clusters rows by (date, customer name) in first-appearance
// order. Delivery fee, notes, and contact fields keep the first value
// seen for the group; item lines accumulate in row order.
func groupRows(rows []ImportRow) []*importGroup {
	byKey := make(map[string]*importGroup)
	var ordered []*importGroup

	for _, row := range rows {
		if row.Date.IsZero() || row.CustomerName == "" || row.ProductName == "" {
			log.Printf("import: skipping row missing date, customer, or product")
			continue
		}

		date := DayOf(row.Date)
		key := date.Format("2006-01-02") + "|" + row.CustomerName

		group, ok := byKey[key]
		if !ok {
			group = &importGroup{
				date:            date,
				customerName:    row.CustomerName,
				customerPhone:   row.CustomerPhone,
				customerAddress: row.CustomerAddress,
				deliveryFee:     row.DeliveryFee,
				notes:           row.Notes,
			}
			byKey[key] = group
			ordered = append(ordered, group)
		} else {
			if group.deliveryFee == nil {
				group.deliveryFee = row.DeliveryFee
			}
			if group.notes == "" {
				group.notes = row.Notes
			}
			if group.customerPhone == "" {
				group.customerPhone = row.CustomerPhone
			}
			if group.customerAddress == "" {
				group.customerAddress = row.CustomerAddress
			}
		}

		group.lines = append(group.lines, importLine{
			productName: row.ProductName,
			qty:         row.Qty,
			price:       row.Price,
		})
	}

	return ordered
}

// resolveCustomer maps a customer name to its id, creating the customer
// on first reference. An existing record gets blank phone/address fields
// backfilled from the import.
func (s *importService) resolveCustomer(cache *resolveCache, group *importGroup) (uint, error) {
	if id, ok := cache.customers[group.customerName]; ok {
		return id, nil
	}

	customer, err := s.repos.Customers.GetByName(group.customerName)
	switch {
	case err == nil:
		updated := false
		if customer.Phone == "" && group.customerPhone != "" {
			customer.Phone = group.customerPhone
			updated = true
		}
		if customer.Address == "" && group.customerAddress != "" {
			customer.Address = group.customerAddress
			updated = true
		}
		if updated {
			if err := s.repos.Customers.Update(customer); err != nil {
				return 0, NewStoreError(err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = &models.Customer{
			Name:    group.customerName,
			Phone:   group.customerPhone,
			Address: group.customerAddress,
		}
		if err := s.repos.Customers.Create(customer); err != nil {
			return 0, NewStoreError(err)
		}
	default:
		return 0, NewStoreError(err)
	}

	cache.customers[group.customerName] = customer.ID
	return customer.ID, nil
}

// resolveProduct maps a product name to its id, creating an unseen
// product with unit price 0.
func (s *importService) resolveProduct(cache *resolveCache, name string) (uint, error) {
	if id, ok := cache.products[name]; ok {
		return id, nil
	}

	product, err := s.repos.Products.GetByName(name)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = &models.Product{Name: name, UnitPrice: 0}
		if err := s.repos.Products.Create(product); err != nil {
			return 0, NewStoreError(err)
		}
	default:
		return 0, NewStoreError(err)
	}

	cache.products[name] = product.ID
	return product.ID, nil
}
