package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/services"
)

type ReviewHandler struct {
	service services.ReviewService
}

func NewReviewHandler(service services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type reviewRequest struct {
	BookID  string `json:"bookId" binding:"required,objectid"`
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Content string `json:"content"`
}

func (h *ReviewHandler) Add(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.service.Add(c.Request.Context(), ac.ID, req.BookID, req.Rating, req.Content)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review updated."})
}

func (h *ReviewHandler) Get(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	review, err := h.service.Get(c.Request.Context(), ac.ID, c.Param("bookId"))
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Book id is not valid!"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": review.Content, "rating": review.Rating})
}
