package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"digiread/internal/models"
	"digiread/internal/services"
)

const identityKey = "identity"

// credential reads the session cookie first and falls back to a bearer header.
func credential(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionAuth resolves the caller into a *models.AuthContext for downstream handlers.
// Credential verification failures are left to ErrorHandler.
func SessionAuth(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight carries no credential
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := credential(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request!"})
			return
		}

		ac, err := authService.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request user not found!"})
			return
		case err != nil:
			_ = c.Error(err)
			c.Abort()
			return
		}

		SetIdentity(c, ac)
		c.Next()
	}
}

// SetIdentity attaches the caller for downstream handlers.
func SetIdentity(c *gin.Context, ac *models.AuthContext) {
	c.Set(identityKey, ac)
}

// Identity returns the caller set by SessionAuth.
func Identity(c *gin.Context) (*models.AuthContext, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	ac, ok := v.(*models.AuthContext)
	return ac, ok && ac != nil
}
