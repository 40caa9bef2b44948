package middlewares

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
	"aneka-keramik/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware allows limit requests per client IP in each fixed window.
// When Redis is unavailable requests are let through.
func RateLimitMiddleware(store redis.IRedisRepositories, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf(constants.CacheKeyRateLimit, c.ClientIP())

		count, ttl, err := store.IncrWithExpiry(c.Request.Context(), key, window)
		if err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dtos.Response{
				Success: false,
				Error:   &dtos.ErrorBody{Message: constants.MsgTooManyRequests},
			})
			return
		}
		c.Next()
	}
}
