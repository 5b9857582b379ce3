package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"restaurant-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	ledger     Ledger
	reports    Reports
	catalog    Catalog
	inventory  Inventory
	users      Users
	checks     map[string]Pinger
	reportDays int
	topLimit   int
}

// Options configures a Handler
type Options struct {
	Ledger    Ledger
	Reports   Reports
	Catalog   Catalog
	Inventory Inventory
	Users     Users
	// Checks are pinged by /ready, keyed by name
	Checks map[string]Pinger
	// ReportDays and TopProducts are the defaults of the report endpoints
	ReportDays  int
	TopProducts int
}

// NewHandler creates a new HTTP handler
func NewHandler(opts Options) *Handler {
	if opts.ReportDays <= 0 {
		opts.ReportDays = 7
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = 5
	}
	return &Handler{
		ledger:     opts.Ledger,
		reports:    opts.Reports,
		catalog:    opts.Catalog,
		inventory:  opts.Inventory,
		users:      opts.Users,
		checks:     opts.Checks,
		reportDays: opts.ReportDays,
		topLimit:   opts.TopProducts,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(tracingMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", h.listActiveDishes)
		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)
	}

	authed := v1.Group("", authMiddleware(h.users))
	{
		authed.GET("/me", h.me)

		authed.POST("/sales", h.createSale)
		authed.GET("/sales", h.listSales)
		authed.GET("/sales/:id", h.getSale)
		authed.DELETE("/sales/:id", h.deleteSale)
		authed.POST("/sales/:id/payments", h.applyPayment)
		authed.GET("/sales/:id/payments", h.listPayments)

		authed.GET("/reports/daily", h.salesByDay)
		authed.GET("/reports/products", h.topProducts)
		authed.GET("/dashboard", h.dashboard)

		authed.GET("/inventory", h.listInventory)
		authed.GET("/inventory/categories", h.inventoryCategories)
		authed.GET("/inventory/summary", h.inventorySummary)
		authed.GET("/inventory/:id", h.getInventoryItem)
	}

	stock := authed.Group("", requireRole(models.RoleAdmin, models.RoleSupervisor))
	{
		stock.POST("/inventory", h.createInventoryItem)
		stock.PUT("/inventory/:id", h.updateInventoryItem)
		stock.DELETE("/inventory/:id", h.deleteInventoryItem)
	}

	admin := authed.Group("", requireRole(models.RoleAdmin))
	{
		admin.DELETE("/sales", h.deleteAllSales)

		admin.GET("/dishes", h.listAllDishes)
		admin.POST("/dishes", h.createDish)
		admin.PATCH("/dishes/:id", h.updateDish)
		admin.PUT("/dishes/:id/active", h.setDishActive)
		admin.DELETE("/dishes/:id", h.deleteDish)

		admin.GET("/users", h.listUsers)
		admin.PATCH("/users/:id", h.updateUser)
		admin.POST("/users/:id/activate", h.activateUser)
		admin.POST("/users/:id/deactivate", h.deactivateUser)
		admin.DELETE("/users/:id", h.deleteUser)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid ID", nil)
		return 0, false
	}
	return id, true
}

// parseProfileID reads a profile uuid from the path, in canonical form
func parseProfileID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid user ID", nil)
		return "", false
	}
	return id.String(), true
}

// queryInt reads a positive integer query parameter, or def when absent
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "Invalid "+name, err)
		return 0, false
	}
	return n, true
}
