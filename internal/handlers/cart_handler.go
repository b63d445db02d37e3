package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/services"
)

type CartHandler struct {
	service services.CartService
}

func NewCartHandler(service services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type cartRequest struct {
	Items []struct {
		Product  string `json:"product" binding:"required,objectid"`
		Quantity *int   `json:"quantity" binding:"required"`
	} `json:"items" binding:"required,dive"`
}

func (h *CartHandler) Update(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var req cartRequest
	if !bindJSON(c, &req) {
		return
	}
	items := make([]services.CartItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.CartItemInput{Product: it.Product, Quantity: *it.Quantity})
	}

	id, err := h.service.Update(c.Request.Context(), ac.ID, items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": id})
}

func (h *CartHandler) Get(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	cart, err := h.service.Get(c.Request.Context(), ac.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (h *CartHandler) Clear(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	if err := h.service.Clear(c.Request.Context(), ac.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
