package handlers

import (
	"net/http"
	"strconv"
	"time"

	"order_manager/internal/services"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type orderItemRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
}

type createOrderRequest struct {
	Date        string             `json:"date" binding:"required"`
	CustomerID  uint               `json:"customer_id" binding:"required"`
	Items       []orderItemRequest `json:"items" binding:"required"`
	DeliveryFee *float64           `json:"delivery_fee"`
	Notes       string             `json:"notes"`
}

type replaceOrderRequest struct {
	Date        string             `json:"date" binding:"required"`
	CustomerID  uint               `json:"customer_id" binding:"required"`
	DeliveryFee float64            `json:"delivery_fee"`
	Notes       string             `json:"notes"`
	Items       []orderItemRequest `json:"items"`
}

func toItemInputs(items []orderItemRequest) []services.OrderItemInput {
	inputs := make([]services.OrderItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, services.OrderItemInput{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Price:     item.Price,
		})
	}
	return inputs
}

// CreateOrMerge is the single-order entry point: the items land either in
// a brand-new order or merge into the existing one for (date, customer).
func (h *OrderHandler) CreateOrMerge(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	result, err := h.orderService.CreateOrMerge(services.CreateOrMergeInput{
		Date:        date,
		CustomerID:  req.CustomerID,
		Items:       toItemInputs(req.Items),
		DeliveryFee: req.DeliveryFee,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// Replace wholesale-overwrites an order: header fields verbatim, item set
// discarded and rewritten.
func (h *OrderHandler) Replace(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req replaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	err = h.orderService.Replace(uint(id), services.ReplaceOrderInput{
		Date:        date,
		CustomerID:  req.CustomerID,
		DeliveryFee: req.DeliveryFee,
		Notes:       req.Notes,
		Items:       toItemInputs(req.Items),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": "replaced"})
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	if err := h.orderService.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, items, err := h.orderService.GetOrder(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// List serves ?date=YYYY-MM-DD queries.
func (h *OrderHandler) List(c *gin.Context) {
	dateParam := c.Query("date")
	if dateParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	date, err := time.Parse(dateLayout, dateParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	orders, err := h.orderService.GetOrdersByDate(date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListByMonth serves /month/:month with month as YYYY-MM.
func (h *OrderHandler) ListByMonth(c *gin.Context) {
	month, err := time.Parse("2006-01", c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	orders, err := h.orderService.GetOrdersByMonth(month.Year(), month.Month())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ListRecent(c *gin.Context) {
	orders, err := h.orderService.GetRecentOrders(services.RecentOrdersLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
