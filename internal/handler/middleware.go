package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const apiKeyContextKey = "api_key"

// RequireAPIKey checks the Authorization header against the configured key
// set and stores the key for downstream rate limiting.
func RequireAPIKey(validKeys map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "No Authorization header")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, http.StatusUnauthorized, "invalid_auth", "Invalid authorization header format")
			return
		}

		key := parts[1]
		if !validKeys[key] {
			abortWithError(c, http.StatusUnauthorized, "invalid_auth", "Invalid API key")
			return
		}

		c.Set(apiKeyContextKey, key)
		c.Next()
	}
}

type RateLimiter interface {
	Allow(apiKey string) (bool, error)
}

// RateLimit rejects requests once the caller's window budget is spent. A
// broken limiter backend fails open so the API stays usable.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(apiKeyContextKey)
		if key == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(key)
		if err != nil {
			slog.Error("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Request limit exceeded, retry later")
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}
