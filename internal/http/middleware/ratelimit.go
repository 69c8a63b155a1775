package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

// RateLimit throttles per client IP. With a redis client the counters are
// shared across replicas; otherwise they live in process memory.
func RateLimit(log *logger.Logger, rdb goredis.UniversalClient, perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	var store ratelimit.Store
	if rdb != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: rdb.(*goredis.Client),
			Rate:        time.Minute,
			Limit:       uint(perMinute),
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: uint(perMinute),
		})
	}
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			retry := int(math.Ceil(time.Until(info.ResetTime).Seconds()))
			if retry < 1 {
				retry = 1
			}
			if log != nil {
				log.Warn("rate limit exceeded", "path", c.FullPath(), "client_ip", c.ClientIP(), "retry_after_s", retry)
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "Too many requests", "code": "rate_limited"},
			})
		},
		KeyFunc: func(c *gin.Context) string { return c.ClientIP() },
	})
}
