package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/models"
	"digiread/internal/services"
)

type HistoryHandler struct {
	service services.HistoryService
}

func NewHistoryHandler(service services.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

type historyRequest struct {
	BookID       string             `json:"bookId" binding:"required,objectid"`
	LastLocation string             `json:"lastLocation"`
	Highlights   []models.Highlight `json:"highlights" binding:"omitempty,dive"`
	Remove       *bool              `json:"remove" binding:"required"`
}

func (h *HistoryHandler) Update(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var req historyRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.service.Update(c.Request.Context(), ac.ID, services.HistoryInput{
		BookID:       req.BookID,
		LastLocation: req.LastLocation,
		Highlights:   req.Highlights,
		Remove:       *req.Remove,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History updated successfully"})
}
