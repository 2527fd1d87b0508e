package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	promhandler "github.com/jwalitptl/ehr-api/internal/handler/prometheus"
	"github.com/jwalitptl/ehr-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	// Mode is the gin mode; empty leaves the process-wide mode alone
	Mode             string
	RateLimitEnabled bool
	RateLimit        middleware.RateLimiterConfig
	AllowedOrigins   []string
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	health    Handler
	metrics   *promhandler.Handler
	protected []Handler
}

func NewRouter(
	config RouterConfig,
	auth *middleware.AuthMiddleware,
	health Handler,
	metrics *promhandler.Handler,
	protected ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:    engine,
		auth:      auth,
		health:    health,
		metrics:   metrics,
		protected: protected,
	}

	// Core middlewares; ErrorHandler sits inside Logger and metrics so they
	// observe the rendered status.
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		corsMiddleware(config.AllowedOrigins),
	)

	if config.RateLimitEnabled {
		engine.Use(middleware.NewRateLimiter(config.RateLimit).RateLimit())
	}

	engine.Use(
		middleware.ErrorHandler(),
		middleware.Timeout(config.RequestTimeout),
		middleware.BodyLimit(config.MaxBodyBytes),
	)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		ExposeHeaders: []string{middleware.HeaderXRequestID},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	if !cfg.AllowAllOrigins && len(cfg.AllowOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(cfg)
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Health check endpoints
	r.health.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.protected {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
