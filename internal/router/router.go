package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	promhandler "github.com/jwalitptl/rota-api/internal/handler/prometheus"
	"github.com/jwalitptl/rota-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	health   Handler
	handlers []Handler
}

type RouterConfig struct {
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	CORSConfig       middleware.CORSConfig
	Actor            middleware.ActorConfig
	MetricsNamespace string
	Registerer       prometheus.Registerer
}

// NewRouter builds the engine with the shared middleware chain. health is
// mounted before rate limiting so health checks are never throttled.
func NewRouter(config RouterConfig, health Handler, handlers ...Handler) *Router {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	httpMetrics := promhandler.New(config.MetricsNamespace, config.Registerer)

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		httpMetrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "route not found"})
	})

	return &Router{
		engine:   engine,
		config:   config,
		health:   health,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	config := r.config
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.health != nil {
		r.health.RegisterRoutes(api)
	}

	protected := api.Group("")
	chain := []gin.HandlerFunc{
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodyBytes}),
		middleware.Actor(config.Actor),
	}
	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		chain = append([]gin.HandlerFunc{limiter.RateLimit()}, chain...)
	}
	protected.Use(chain...)

	for _, h := range r.handlers {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
