package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/neiist-dev/activities-backend/utils"
)

// RateLimiter throttles per client IP, backed by Redis so limits hold across
// replicas. rate uses limiter notation, e.g. "60-M" or "10-S".
func RateLimiter(rate string) gin.HandlerFunc {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		log.Printf("⚠️ Invalid rate %q, rate limiting disabled: %v", rate, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := sredis.NewStoreWithOptions(utils.RedisClient, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
	if err != nil {
		log.Printf("⚠️ Rate limiter store unavailable, rate limiting disabled: %v", err)
		return func(c *gin.Context) { c.Next() }
	}

	return mgin.NewMiddleware(limiter.New(store, parsed), mgin.WithErrorHandler(func(c *gin.Context, err error) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limiter failure"})
		c.Abort()
	}))
}
