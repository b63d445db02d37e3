package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/services"
)

type PaymentHandler struct {
	service services.PaymentService
}

func NewPaymentHandler(service services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Webhook receives Midtrans notifications. Midtrans retries anything but 2xx,
// so only internal failures answer 500.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var n services.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not complete payment!"})
		return
	}

	err := h.service.HandleNotification(c.Request.Context(), n)
	switch {
	case errors.Is(err, services.ErrPaymentSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not complete payment!"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusOK)
}
