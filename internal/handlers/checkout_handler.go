package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/services"
)

type CheckoutHandler struct {
	service services.CheckoutService
}

func NewCheckoutHandler(service services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// @Summary      Start checkout
// @Description  Turns the caller's cart into a pending order and returns the Midtrans payment page
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var req struct {
		CartID string `json:"cartId"`
	}
	_ = c.ShouldBindJSON(&req)

	url, err := h.service.Checkout(c.Request.Context(), ac, req.CartID)
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id!"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found!"})
		return
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkoutUrl": url})
}
