package services

import (
	"errors"
	"fmt"
	"time"

	"order_manager/internal/models"
	"order_manager/internal/repository"

	"gorm.io/gorm"
)

const (
	// RecentOrdersLimit is the page size of the recent-orders listing and
	// the only listing shape the cache stores.
	RecentOrdersLimit = 20

	recentOrdersTTL = 5 * time.Minute

	// createAttempts bounds the retry loop around order creation. A retry
	// happens when a concurrent call won the (date, customer) insert race
	// or grabbed the same order code first.
	createAttempts = 3
)

// OrderSequencer hands out the per-date sequence number used in order
// codes. Implemented by the redis client; nil falls back to count+1.
type OrderSequencer interface {
	NextOrderSequence(dateKey string, seed int64) (int64, error)
}

// OrderCache caches the recent-orders listing.
type OrderCache interface {
	SetRecentOrders(value interface{}, ttl time.Duration) error
	GetRecentOrders(dest interface{}) error
	InvalidateRecentOrders() error
}

// OrderItemInput is one incoming (product, qty, price) line.
type OrderItemInput struct {
	ProductID uint
	Qty       int
	Price     float64
}

// CreateOrMergeInput describes one create-or-merge call. DeliveryFee is a
// pointer so "not supplied" (keep the stored fee) is distinguishable from
// an explicit zero.
type CreateOrMergeInput struct {
	Date        time.Time
	CustomerID  uint
	Items       []OrderItemInput
	DeliveryFee *float64
	Notes       string
}

// ReplaceOrderInput is the full-replace payload; every header field is
// written verbatim.
type ReplaceOrderInput struct {
	Date        time.Time
	CustomerID  uint
	DeliveryFee float64
	Notes       string
	Items       []OrderItemInput
}

// OrderResult reports the outcome of a create-or-merge call.
type OrderResult struct {
	OrderID     uint    `json:"order_id"`
	OrderCode   string  `json:"order_code"`
	Created     bool    `json:"created"`
	ItemsMerged int     `json:"items_merged"`
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

type OrderService interface {
	CreateOrMerge(input CreateOrMergeInput) (*OrderResult, error)
	Replace(id uint, input ReplaceOrderInput) error
	Delete(id uint) error
	GetOrder(id uint) (*models.Order, []*models.OrderItem, error)
	GetOrdersByDate(date time.Time) ([]models.Order, error)
	GetOrdersByMonth(year int, month time.Month) ([]models.Order, error)
	GetRecentOrders(limit int) ([]models.Order, error)
}

type orderService struct {
	tx    repository.TxManager
	repos repository.Repositories
	seq   OrderSequencer
	cache OrderCache
}

// NewOrderService builds the consolidation engine. seq and cache may be
// nil; the service then sequences from the database count and serves
// listings uncached.
func NewOrderService(tx repository.TxManager, repos repository.Repositories, seq OrderSequencer, cache OrderCache) OrderService {
	return &orderService{tx: tx, repos: repos, seq: seq, cache: cache}
}

// DayOf strips the time component: orders are keyed by calendar day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *orderService) CreateOrMerge(input CreateOrMergeInput) (*OrderResult, error) {
	if input.Date.IsZero() {
		return nil, NewValidationError("date is required")
	}
	if input.CustomerID == 0 {
		return nil, NewValidationError("customer_id is required")
	}
	if len(input.Items) == 0 {
		return nil, NewValidationError("at least one item is required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	date := DayOf(input.Date)

	var result *OrderResult
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		result, err = s.createOrMergeOnce(date, input, attempt)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// Lost a race on the (date, customer) or order-code unique index.
		// The whole transaction rolled back; rerun it so the resolver sees
		// the winner's row.
	}
	if err != nil {
		return nil, err
	}

	s.invalidateListings()
	return result, nil
}

// createOrMergeOnce runs one resolver, merge, recompute pipeline inside
// a single transaction.
func (s *orderService) createOrMergeOnce(date time.Time, input CreateOrMergeInput, attempt int) (*OrderResult, error) {
	var result OrderResult

	err := s.tx.Do(func(repos repository.Repositories) error {
		order, created, err := s.resolveOrder(repos.Orders, date, input, attempt)
		if err != nil {
			return err
		}

		merged, err := mergeItems(repos.OrderItems, order.ID, input.Items)
		if err != nil {
			return err
		}

		if !created {
			order.Notes = MergeNotes(order.Notes, input.Notes)
		}

		if err := recomputeAggregates(repos, order, input.DeliveryFee); err != nil {
			return err
		}

		result = OrderResult{
			OrderID:     order.ID,
			OrderCode:   order.OrderCode,
			Created:     created,
			ItemsMerged: merged,
			Subtotal:    order.Subtotal,
			DeliveryFee: order.DeliveryFee,
			Total:       order.Total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// resolveOrder finds the single order for (date, customer), creating it
// with a fresh order code when absent. The found row is locked for the
// rest of the transaction.
func (s *orderService) resolveOrder(orders repository.OrderRepository, date time.Time, input CreateOrMergeInput, attempt int) (*models.Order, bool, error) {
	order, err := orders.GetByDateAndCustomer(date, input.CustomerID)
	if err == nil {
		return order, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, NewStoreError(err)
	}

	code, err := s.nextOrderCode(orders, date, attempt)
	if err != nil {
		return nil, false, err
	}

	fee := 0.0
	if input.DeliveryFee != nil {
		fee = *input.DeliveryFee
	}

	order = &models.Order{
		OrderCode:   code,
		OrderDate:   date,
		CustomerID:  input.CustomerID,
		DeliveryFee: fee,
		Notes:       input.Notes,
	}
	if err := orders.Create(order); err != nil {
		return nil, false, NewStoreError(err)
	}
	return order, true, nil
}

// nextOrderCode builds the ddmmyy_N display code. N comes from the redis
// per-date counter when available, otherwise from the row count. The
// fallback folds the attempt index in: deleting a same-day order shrinks
// the count, so a bare count+1 can reproduce a surviving code and would
// recompute the identical value on every retry. The code is assigned
// once at creation and never recomputed.
func (s *orderService) nextOrderCode(orders repository.OrderRepository, date time.Time, attempt int) (string, error) {
	count, err := orders.CountByDate(date)
	if err != nil {
		return "", NewStoreError(err)
	}

	key := orderDateKey(date)
	seq := count + 1 + int64(attempt)
	if s.seq != nil {
		if n, seqErr := s.seq.NextOrderSequence(key, count); seqErr == nil {
			seq = n
		}
		// A redis outage degrades to the count-based fallback; the unique
		// index on order_code still rejects duplicates and the caller
		// retries.
	}

	return fmt.Sprintf("%s_%d", key, seq), nil
}

func orderDateKey(date time.Time) string {
	return date.Format("020106")
}

// mergeItems applies incoming lines strictly in input order: an existing
// (order, product) row gets qty added and price overwritten, a missing
// one is inserted verbatim. Lines repeating a product within one call are
// deliberately not pre-aggregated; each is applied against the store in
// sequence.
func mergeItems(items repository.OrderItemRepository, orderID uint, lines []OrderItemInput) (int, error) {
	merged := 0
	for _, line := range lines {
		_, err := items.GetByOrderAndProduct(orderID, line.ProductID)
		switch {
		case err == nil:
			if err := items.AddQty(orderID, line.ProductID, line.Qty, line.Price); err != nil {
				return merged, NewStoreError(err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.OrderItem{
				OrderID:   orderID,
				ProductID: line.ProductID,
				Qty:       line.Qty,
				Price:     line.Price,
			}
			if err := items.Create(item); err != nil {
				return merged, NewStoreError(err)
			}
		default:
			return merged, NewStoreError(err)
		}
		merged++
	}
	return merged, nil
}

// MergeNotes combines stored and incoming notes when merging into an
// existing order. Both non-empty joins with " | "; otherwise the
// non-empty side wins.
func MergeNotes(existing, incoming string) string {
	switch {
	case existing == "":
		return incoming
	case incoming == "":
		return existing
	default:
		return existing + " | " + incoming
	}
}

// recomputeAggregates re-reads the full current item set and derives
// subtotal and total from scratch, so the figures are exact no matter
// how many merges came before. A nil fee keeps the stored delivery fee.
func recomputeAggregates(repos repository.Repositories, order *models.Order, fee *float64) error {
	items, err := repos.OrderItems.GetByOrderID(order.ID)
	if err != nil {
		return NewStoreError(err)
	}

	subtotal := 0.0
	for _, item := range items {
		subtotal += float64(item.Qty) * item.Price
	}

	order.Subtotal = subtotal
	if fee != nil {
		order.DeliveryFee = *fee
	}
	order.Total = subtotal + order.DeliveryFee

	if err := repos.Orders.Update(order); err != nil {
		return NewStoreError(err)
	}
	return nil
}

// Replace discards the order's entire item set and writes the supplied
// header fields and items verbatim, then recomputes aggregates. It does
// not go through the resolver; a (date, customer) collision with another
// order surfaces as a store failure from the unique index.
func (s *orderService) Replace(id uint, input ReplaceOrderInput) error {
	if id == 0 {
		return NewValidationError("order id is required")
	}
	if input.Date.IsZero() {
		return NewValidationError("date is required")
	}
	if input.CustomerID == 0 {
		return NewValidationError("customer_id is required")
	}
	if err := validateItems(input.Items); err != nil {
		return err
	}

	err := s.tx.Do(func(repos repository.Repositories) error {
		order, err := repos.Orders.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("order %d not found", id)
			}
			return NewStoreError(err)
		}

		// OrderCode stays; it is assigned once at creation.
		order.OrderDate = DayOf(input.Date)
		order.CustomerID = input.CustomerID
		order.Notes = input.Notes

		if err := repos.OrderItems.DeleteByOrderID(order.ID); err != nil {
			return NewStoreError(err)
		}

		for _, line := range input.Items {
			item := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Qty:       line.Qty,
				Price:     line.Price,
			}
			if err := repos.OrderItems.Create(item); err != nil {
				return NewStoreError(err)
			}
		}

		return recomputeAggregates(repos, order, &input.DeliveryFee)
	})
	if err != nil {
		return err
	}

	s.invalidateListings()
	return nil
}

// Delete removes the order and cascades to its items.
func (s *orderService) Delete(id uint) error {
	if id == 0 {
		return NewValidationError("order id is required")
	}

	err := s.tx.Do(func(repos repository.Repositories) error {
		if _, err := repos.Orders.GetByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("order %d not found", id)
			}
			return NewStoreError(err)
		}

		if err := repos.OrderItems.DeleteByOrderID(id); err != nil {
			return NewStoreError(err)
		}
		if err := repos.Orders.Delete(id); err != nil {
			return NewStoreError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateListings()
	return nil
}

func (s *orderService) GetOrder(id uint) (*models.Order, []*models.OrderItem, error) {
	order, err := s.repos.Orders.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("order %d not found", id)
		}
		return nil, nil, NewStoreError(err)
	}

	items, err := s.repos.OrderItems.GetByOrderID(id)
	if err != nil {
		return nil, nil, NewStoreError(err)
	}
	return order, items, nil
}

func (s *orderService) GetOrdersByDate(date time.Time) ([]models.Order, error) {
	orders, err := s.repos.Orders.GetByDate(DayOf(date))
	if err != nil {
		return nil, NewStoreError(err)
	}
	return orders, nil
}

func (s *orderService) GetOrdersByMonth(year int, month time.Month) ([]models.Order, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	orders, err := s.repos.Orders.GetByDateRange(start, end)
	if err != nil {
		return nil, NewStoreError(err)
	}
	return orders, nil
}

func (s *orderService) GetRecentOrders(limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = RecentOrdersLimit
	}

	cacheable := s.cache != nil && limit == RecentOrdersLimit
	if cacheable {
		var cached []models.Order
		if err := s.cache.GetRecentOrders(&cached); err == nil {
			return cached, nil
		}
	}

	orders, err := s.repos.Orders.GetRecent(limit)
	if err != nil {
		return nil, NewStoreError(err)
	}

	if cacheable {
		// Best effort; a cache write failure never fails the read.
		s.cache.SetRecentOrders(orders, recentOrdersTTL)
	}
	return orders, nil
}

func (s *orderService) invalidateListings() {
	if s.cache != nil {
		s.cache.InvalidateRecentOrders()
	}
}

func validateItems(items []OrderItemInput) error {
	for i, line := range items {
		if line.ProductID == 0 {
			return NewValidationError("item %d: product_id is required", i)
		}
		if line.Qty < 0 {
			return NewValidationError("item %d: qty must not be negative", i)
		}
	}
	return nil
}
