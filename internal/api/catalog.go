package api

import (
	"net/http"

	"restaurant-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// listActiveDishes serves the public catalog
func (h *Handler) listActiveDishes(c *gin.Context) {
	dishes, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func (h *Handler) listAllDishes(c *gin.Context) {
	dishes, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func (h *Handler) createDish(c *gin.Context) {
	var req service.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	dish, err := h.catalog.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (h *Handler) updateDish(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	dish, err := h.catalog.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *Handler) setDishActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	dish, err := h.catalog.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *Handler) deleteDish(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
