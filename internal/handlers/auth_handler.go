package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/auth"
	"digiread/internal/middleware"
	"digiread/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	cookie      middleware.SessionCookie
}

func NewAuthHandler(authService services.AuthService, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

type generateLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type exchangeTokenRequest struct {
	Token string `json:"token"`
}

// @Summary      Request a magic link
// @Description  Creates the account on first use and emails a single-use sign-in link
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      generateLinkRequest  true  "Email address"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /auth/generate-link [post]
func (h *AuthHandler) GenerateLink(c *gin.Context) {
	var req generateLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.GenerateLink(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Please check your email for the verification link."})
}

// @Summary      Exchange a credential for a session cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      exchangeTokenRequest  true  "Credential from the verification redirect"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/exchange-token [post]
func (h *AuthHandler) ExchangeToken(c *gin.Context) {
	var req exchangeTokenRequest
	_ = c.ShouldBindJSON(&req)

	profile, err := h.authService.Exchange(c.Request.Context(), req.Token)
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	case errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}

	h.cookie.Set(c, req.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Token exchanged successfully", "profile": profile})
}
