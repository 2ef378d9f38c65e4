package services

import (
	"errors"
	"sort"
	"time"

	"order_manager/internal/models"
	"order_manager/internal/repository"

	"gorm.io/gorm"
)

// memDB is a shared in-memory backing store for the fake repositories.
// It enforces the same unique indexes the real schema declares, so the
// service's duplicate-key handling is exercised for real.
type memDB struct {
	orders    map[uint]models.Order
	items     map[uint]models.OrderItem
	customers map[uint]models.Customer
	products  map[uint]models.Product
	nextID    uint

	// product names whose lookup fails, for partial-failure tests
	failProductNames map[string]bool
}

func newMemDB() *memDB {
	return &memDB{
		orders:           make(map[uint]models.Order),
		items:            make(map[uint]models.OrderItem),
		customers:        make(map[uint]models.Customer),
		products:         make(map[uint]models.Product),
		failProductNames: make(map[string]bool),
	}
}

func (d *memDB) id() uint {
	d.nextID++
	return d.nextID
}

func (d *memDB) repos() repository.Repositories {
	return repository.Repositories{
		Orders:     &fakeOrderRepo{db: d},
		OrderItems: &fakeOrderItemRepo{db: d},
		Customers:  &fakeCustomerRepo{db: d},
		Products:   &fakeProductRepo{db: d},
	}
}

// fakeTxManager mimics the real unit of work: a failing closure leaves
// the store exactly as it was. Setting orders swaps in a wrapped order
// repository for race simulations.
type fakeTxManager struct {
	db     *memDB
	orders repository.OrderRepository
}

func (t *fakeTxManager) Do(fn func(repos repository.Repositories) error) error {
	saved := t.db.snapshot()

	repos := t.db.repos()
	if t.orders != nil {
		repos.Orders = t.orders
	}

	if err := fn(repos); err != nil {
		t.db.restore(saved)
		return err
	}
	return nil
}

type memSnapshot struct {
	orders    map[uint]models.Order
	items     map[uint]models.OrderItem
	customers map[uint]models.Customer
	products  map[uint]models.Product
	nextID    uint
}

func (d *memDB) snapshot() memSnapshot {
	s := memSnapshot{
		orders:    make(map[uint]models.Order, len(d.orders)),
		items:     make(map[uint]models.OrderItem, len(d.items)),
		customers: make(map[uint]models.Customer, len(d.customers)),
		products:  make(map[uint]models.Product, len(d.products)),
		nextID:    d.nextID,
	}
	for id, order := range d.orders {
		s.orders[id] = order
	}
	for id, item := range d.items {
		s.items[id] = item
	}
	for id, customer := range d.customers {
		s.customers[id] = customer
	}
	for id, product := range d.products {
		s.products[id] = product
	}
	return s
}

func (d *memDB) restore(s memSnapshot) {
	d.orders = s.orders
	d.items = s.items
	d.customers = s.customers
	d.products = s.products
	d.nextID = s.nextID
}

// raceOrderRepo misses the first n resolver lookups, simulating an order
// inserted by a concurrent call between resolve and create.
type raceOrderRepo struct {
	repository.OrderRepository
	misses int
}

func (r *raceOrderRepo) GetByDateAndCustomer(date time.Time, customerID uint) (*models.Order, error) {
	if r.misses > 0 {
		r.misses--
		return nil, gorm.ErrRecordNotFound
	}
	return r.OrderRepository.GetByDateAndCustomer(date, customerID)
}

type fakeOrderRepo struct {
	db *memDB
}

func (r *fakeOrderRepo) Create(order *models.Order) error {
	for _, existing := range r.db.orders {
		if existing.OrderDate.Equal(order.OrderDate) && existing.CustomerID == order.CustomerID {
			return gorm.ErrDuplicatedKey
		}
		if existing.OrderCode == order.OrderCode {
			return gorm.ErrDuplicatedKey
		}
	}
	order.ID = r.db.id()
	order.CreatedAt = time.Now()
	r.db.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	order, ok := r.db.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) GetByDateAndCustomer(date time.Time, customerID uint) (*models.Order, error) {
	for _, order := range r.db.orders {
		if order.OrderDate.Equal(date) && order.CustomerID == customerID {
			found := order
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) CountByDate(date time.Time) (int64, error) {
	var count int64
	for _, order := range r.db.orders {
		if order.OrderDate.Equal(date) {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) Update(order *models.Order) error {
	if _, ok := r.db.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Delete(id uint) error {
	delete(r.db.orders, id)
	return nil
}

func (r *fakeOrderRepo) GetByDate(date time.Time) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range r.db.orders {
		if order.OrderDate.Equal(date) {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (r *fakeOrderRepo) GetByDateRange(startDate, endDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range r.db.orders {
		if !order.OrderDate.Before(startDate) && !order.OrderDate.After(endDate) {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (r *fakeOrderRepo) GetRecent(limit int) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range r.db.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

type fakeOrderItemRepo struct {
	db *memDB
}

func (r *fakeOrderItemRepo) Create(orderItem *models.OrderItem) error {
	for _, existing := range r.db.items {
		if existing.OrderID == orderItem.OrderID && existing.ProductID == orderItem.ProductID {
			return gorm.ErrDuplicatedKey
		}
	}
	orderItem.ID = r.db.id()
	r.db.items[orderItem.ID] = *orderItem
	return nil
}

func (r *fakeOrderItemRepo) GetByOrderID(orderID uint) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	for _, item := range r.db.items {
		if item.OrderID == orderID {
			found := item
			items = append(items, &found)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *fakeOrderItemRepo) GetByOrderAndProduct(orderID, productID uint) (*models.OrderItem, error) {
	for _, item := range r.db.items {
		if item.OrderID == orderID && item.ProductID == productID {
			found := item
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderItemRepo) AddQty(orderID, productID uint, qty int, price float64) error {
	for id, item := range r.db.items {
		if item.OrderID == orderID && item.ProductID == productID {
			item.Qty += qty
			item.Price = price
			r.db.items[id] = item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderItemRepo) DeleteByOrderID(orderID uint) error {
	for id, item := range r.db.items {
		if item.OrderID == orderID {
			delete(r.db.items, id)
		}
	}
	return nil
}

type fakeCustomerRepo struct {
	db *memDB
}

func (r *fakeCustomerRepo) Create(customer *models.Customer) error {
	for _, existing := range r.db.customers {
		if existing.Name == customer.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	customer.ID = r.db.id()
	r.db.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(id uint) (*models.Customer, error) {
	customer, ok := r.db.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &customer, nil
}

func (r *fakeCustomerRepo) GetByName(name string) (*models.Customer, error) {
	for _, customer := range r.db.customers {
		if customer.Name == name {
			found := customer
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) Update(customer *models.Customer) error {
	if _, ok := r.db.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Delete(id uint) error {
	delete(r.db.customers, id)
	return nil
}

func (r *fakeCustomerRepo) GetAll() ([]models.Customer, error) {
	var customers []models.Customer
	for _, customer := range r.db.customers {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

type fakeProductRepo struct {
	db *memDB
}

func (r *fakeProductRepo) Create(product *models.Product) error {
	for _, existing := range r.db.products {
		if existing.Name == product.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	product.ID = r.db.id()
	r.db.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	product, ok := r.db.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (r *fakeProductRepo) GetByName(name string) (*models.Product, error) {
	if r.db.failProductNames[name] {
		return nil, errors.New("simulated store failure")
	}
	for _, product := range r.db.products {
		if product.Name == name {
			found := product
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(product *models.Product) error {
	if _, ok := r.db.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(id uint) error {
	delete(r.db.products, id)
	return nil
}

func (r *fakeProductRepo) GetAll() ([]models.Product, error) {
	var products []models.Product
	for _, product := range r.db.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// fakeSequencer mirrors the redis per-date counter: seeded once per key,
// monotonic from then on.
type fakeSequencer struct {
	counters map[string]int64
}

func newFakeSequencer() *fakeSequencer {
	return &fakeSequencer{counters: make(map[string]int64)}
}

func (s *fakeSequencer) NextOrderSequence(dateKey string, seed int64) (int64, error) {
	if _, ok := s.counters[dateKey]; !ok {
		s.counters[dateKey] = seed
	}
	s.counters[dateKey]++
	return s.counters[dateKey], nil
}

// fakeOrderCache records listing cache traffic.
type fakeOrderCache struct {
	cached        []models.Order
	hasValue      bool
	invalidations int
}

func (c *fakeOrderCache) SetRecentOrders(value interface{}, ttl time.Duration) error {
	orders, ok := value.([]models.Order)
	if !ok {
		return errors.New("unexpected cache payload")
	}
	c.cached = append([]models.Order(nil), orders...)
	c.hasValue = true
	return nil
}

func (c *fakeOrderCache) GetRecentOrders(dest interface{}) error {
	if !c.hasValue {
		return errors.New("recent orders not cached")
	}
	out, ok := dest.(*[]models.Order)
	if !ok {
		return errors.New("unexpected cache dest")
	}
	*out = append([]models.Order(nil), c.cached...)
	return nil
}

func (c *fakeOrderCache) InvalidateRecentOrders() error {
	c.cached = nil
	c.hasValue = false
	c.invalidations++
	return nil
}
