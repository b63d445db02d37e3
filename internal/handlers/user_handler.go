package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/middleware"
	"digiread/internal/services"
)

type UserHandler struct {
	service services.UserService
	cookie  middleware.SessionCookie
}

func NewUserHandler(service services.UserService, cookie middleware.SessionCookie) *UserHandler {
	return &UserHandler{service: service, cookie: cookie}
}

type updateProfileForm struct {
	Name string `form:"name" binding:"required,min=3"`
}

// @Summary      Current profile
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": ac})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.Status(http.StatusOK)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var form updateProfileForm
	if !bindForm(c, &form) {
		return
	}
	avatar, err := readUpload(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid avatar upload"})
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), ac.ID, form.Name, avatar)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only PNG, JPG, and WEBP allowed."})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
