package handler

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/infrastructure/cache"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/auth"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

const (
	ctxKeyUserEmail = "userEmail"
	ctxKeyUserID    = "userId"
	ctxKeyClaims    = "authClaims"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// JWTAuthMiddleware verifies the Bearer token, rejects revoked tokens, and
// stores the tenant identity for the handlers.
func JWTAuthMiddleware(secret string, denylist *cache.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, response.CodeUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Printf("[Auth] denylist check failed: %v", err)
			response.ServerError(c, "internal error")
			c.Abort()
			return
		}
		if revoked {
			response.Unauthorized(c, response.CodeUnauthorized, "token has been revoked")
			c.Abort()
			return
		}

		c.Set(ctxKeyUserEmail, claims.Email)
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}
