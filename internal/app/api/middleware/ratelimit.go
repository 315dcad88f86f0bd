package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	redisclient "github.com/oceanview/backend/internal/platform/redis"
	"github.com/oceanview/backend/pkg/response"
)

// RateLimit allows at most limit requests per client IP within window.
// It keys on the route path so separate endpoints get separate budgets.
func RateLimit(rdb *redisclient.Client, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()
		allowed, err := rdb.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis being down should not lock users out.
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(
				http.StatusTooManyRequests,
				response.ErrorT(response.APIResponseCodeBadRequest, "too many requests, try again later"),
			)
			return
		}
		c.Next()
	}
}
