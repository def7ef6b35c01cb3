package http

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	rateLimitCacheSize = 10_000
	rateLimitIdleTTL   = time.Hour
)

// NewRouter assembles the middleware chain and mounts h. ctx bounds background
// cleanup of the rate limiter.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	h *Handler,
	reg *prometheus.Registry,
	log *zap.Logger,
) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NewMetrics(reg).Handler())
	if cfg.RateLimitRPS > 0 {
		router.Use(middleware.NewHTTPRateLimitPerIP(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, rateLimitCacheSize, rateLimitIdleTTL))
	}

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				"X-Requested-With",
			},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: cfg.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	h.Register(router)
	return router
}
