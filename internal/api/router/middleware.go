package router

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// isAdminKey is the context key set by the auth middleware.
const isAdminKey = "is_admin"

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Log request details
		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		// Log errors if any
		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				logger.Error("Request error",
					slog.String("error", e.Error()),
					slog.Uint64("type", uint64(e.Type)),
				)
			}
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// APIKeyAuthMiddleware authenticates every request via the X-API-Key
// header: either the admin key from the environment or an active issued
// key. Flags admin requests in the context for the admin-only routes.
func APIKeyAuthMiddleware(logger *slog.Logger, store handler.JobStore, adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "API Key missing"})
			return
		}

		if adminKey != "" && key == adminKey {
			c.Set(isAdminKey, true)
			c.Next()
			return
		}

		if _, err := store.GetActiveAPIKey(c.Request.Context(), key); err != nil {
			if errors.Is(err, domain.ErrAPIKeyNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or inactive API key"})
				return
			}
			logger.Error("API key lookup failed",
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Authorization check failed"})
			return
		}

		c.Set(isAdminKey, false)
		c.Next()
	}
}

// RequireAdminMiddleware rejects non-admin callers on admin routes.
func RequireAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(isAdminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Admin access required"})
			return
		}
		c.Next()
	}
}
