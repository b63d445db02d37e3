package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digiread/internal/auth"
	"digiread/internal/logging"
)

// ErrorHandler renders errors handlers attached with c.Error and did not answer themselves.
// Credential failures become 401, everything else a generic 500.
func ErrorHandler(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if errors.Is(err, auth.ErrInvalidCredential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
