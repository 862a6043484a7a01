package router

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ticket-purchase/internal/di"
	"github.com/prohmpiriya/ticket-purchase/pkg/middleware"
)

// Public paths never require a token
const (
	PathHealth       = "/health"
	PathTicketPrices = "/api/v1/ticket-prices"
	PathPurchases    = "/api/v1/purchases"
)

// New builds the HTTP router for the purchase service. Middleware order is
// recovery, request id, access log, CORS, auth and then rate limiting so
// that authenticated requests are limited per account.
func New(c *di.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(c.Logger))
	r.Use(middleware.CORS())

	if cfg.JWT.Enabled {
		r.Use(middleware.JWTMiddleware(&middleware.JWTConfig{
			Secret:    cfg.JWT.Secret,
			SkipPaths: []string{PathHealth, PathTicketPrices},
		}))
	}

	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.BurstSize = cfg.RateLimit.BurstSize
		rl.UseRedis = cfg.RateLimit.UseRedis
		rl.RedisClient = c.Redis
		limiter, stop := middleware.RateLimiter(rl)
		c.OnClose(stop)
		r.Use(limiter)
	}

	r.GET(PathHealth, c.HealthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ticket-prices", c.PriceHandler.List)
		v1.POST("/purchases", c.PurchaseHandler.Create)
	}

	return r
}
