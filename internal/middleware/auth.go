package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reqsmith/internal/auth"
)

const (
	ContextKeySubject = "subject"
	ContextKeyEmail   = "email"
)

// Auth returns Gin middleware that validates bearer tokens and injects the
// caller identity into the request context.
func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// GetSubject returns the authenticated caller id from the request context.
func GetSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	s, _ := v.(string)
	return s
}

// GetEmail returns the authenticated caller email from the request context.
func GetEmail(c *gin.Context) string {
	v, _ := c.Get(ContextKeyEmail)
	s, _ := v.(string)
	return s
}
