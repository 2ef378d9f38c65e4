package handlers

import (
	"net/http"
	"time"

	"order_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

type importRowRequest struct {
	Date            string   `json:"date" binding:"required"`
	CustomerName    string   `json:"customer_name" binding:"required"`
	CustomerPhone   string   `json:"customer_phone"`
	CustomerAddress string   `json:"customer_address"`
	ProductName     string   `json:"product_name" binding:"required"`
	Qty             int      `json:"qty"`
	Price           float64  `json:"price"`
	DeliveryFee     *float64 `json:"delivery_fee"`
	Notes           string   `json:"notes"`
}

type importRequest struct {
	Rows []importRowRequest `json:"rows" binding:"required"`
}

// Import ingests flat tabular rows; parsing of the source file (CSV,
// spreadsheet) happens upstream.
func (h *ImportHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	rows := make([]services.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "row date must be YYYY-MM-DD"})
			return
		}
		rows = append(rows, services.ImportRow{
			Date:            date,
			CustomerName:    row.CustomerName,
			CustomerPhone:   row.CustomerPhone,
			CustomerAddress: row.CustomerAddress,
			ProductName:     row.ProductName,
			Qty:             row.Qty,
			Price:           row.Price,
			DeliveryFee:     row.DeliveryFee,
			Notes:           row.Notes,
		})
	}

	result, err := h.importService.ImportRows(rows)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
