package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/services"
)

type AuthorHandler struct {
	service services.AuthorService
}

func NewAuthorHandler(service services.AuthorService) *AuthorHandler {
	return &AuthorHandler{service: service}
}

type authorRequest struct {
	Name        string   `json:"name" binding:"required,min=3"`
	About       string   `json:"about" binding:"required,min=100"`
	SocialLinks []string `json:"socialLinks" binding:"omitempty,dive,url"`
}

func (r authorRequest) input() services.AuthorInput {
	return services.AuthorInput{Name: r.Name, About: r.About, SocialLinks: r.SocialLinks}
}

func (h *AuthorHandler) Register(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var req authorRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.service.Register(c.Request.Context(), ac, req.input())
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User must be signed up before registering as author!"})
		return
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already registered as author!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Thanks for registering as an author.", "user": profile})
}

func (h *AuthorHandler) Update(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var req authorRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.service.Update(c.Request.Context(), ac, req.input())
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Author not found!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your details updated successfully."})
}

func (h *AuthorHandler) Details(c *gin.Context) {
	details, err := h.service.Details(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Author not found!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *AuthorHandler) Books(c *gin.Context) {
	books, err := h.service.Books(c.Request.Context(), c.Param("authorId"))
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized request!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}
