package api

import (
	"net/http"
	"strings"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type applyPaymentRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

// createSale handles sale registration
func (h *Handler) createSale(c *gin.Context) {
	var req service.CreateSaleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	result, err := h.ledger.CreateSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// listSales handles the filtered sales history
func (h *Handler) listSales(c *gin.Context) {
	filter := models.SaleFilter{
		Status:       models.SaleStatus(strings.ToUpper(c.Query("status"))),
		CustomerName: c.Query("customer"),
		Product:      c.Query("product"),
	}
	if day := c.Query("day"); day != "" {
		parsed, err := service.ParseDay(day, h.ledger.Location())
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Day = &parsed
	}

	list, err := h.ledger.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// getSale handles get sale by ID
func (h *Handler) getSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	sale, err := h.ledger.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

func (h *Handler) deleteSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteAllSales(c *gin.Context) {
	n, err := h.ledger.DeleteAllSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// applyPayment handles an abono against a sale
func (h *Handler) applyPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req applyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sale, payment, err := h.ledger.ApplyPayment(c.Request.Context(), id, req.Amount, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sale":    sale,
		"payment": payment,
	})
}

func (h *Handler) listPayments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payments, err := h.ledger.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *Handler) salesByDay(c *gin.Context) {
	days, ok := queryInt(c, "days", h.reportDays)
	if !ok {
		return
	}

	buckets, err := h.reports.SalesByDay(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buckets)
}

func (h *Handler) topProducts(c *gin.Context) {
	limit, ok := queryInt(c, "limit", h.topLimit)
	if !ok {
		return
	}

	ranking, err := h.reports.TopProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ranking)
}

func (h *Handler) dashboard(c *gin.Context) {
	dash, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}
