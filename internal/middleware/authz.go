package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"digiread/internal/authz"
)

// RequireRoles lets through callers whose role is in allowed. Must run after SessionAuth.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	allowedSet := map[string]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		ac, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request!"})
			return
		}
		if _, ok := allowedSet[ac.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAuthor answers 401 rather than 403 for non-authors, as the frontend expects.
func RequireAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := Identity(c)
		if !ok || !authz.IsAuthor(ac.Role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid request!"})
			return
		}
		c.Next()
	}
}

// RequirePurchased checks the JSON body's bookId against the caller's library.
// The body stays readable through ShouldBindBodyWith.
func RequirePurchased() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request!"})
			return
		}
		var body struct {
			BookID string `json:"bookId"`
		}
		_ = c.ShouldBindBodyWith(&body, binding.JSON)
		if body.BookID == "" || !ac.Owns(body.BookID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sorry we didn't found the book inside your library!"})
			return
		}
		c.Next()
	}
}
