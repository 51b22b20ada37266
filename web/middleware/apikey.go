package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireAPIKey rejects requests whose X-API-Key header does not match the
// configured key. An empty configured key disables the check (local dev).
func RequireAPIKey(key string, logger *zap.Logger) gin.HandlerFunc {
	if key == "" {
		logger.Warn("SERVER_API_KEY is empty; API key check disabled")
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}
