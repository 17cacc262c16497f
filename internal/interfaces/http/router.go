package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/smilescombine/internal/interfaces/http/handlers"
	"github.com/turtacn/smilescombine/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree.  Nil members are skipped.
type RouterConfig struct {
	// Handlers
	LibraryHandler *handlers.LibraryHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	RateLimiter middleware.RateLimiter
	MaxBodySize int64

	// Infrastructure
	Mode             string
	Logger           logging.Logger
	Metrics          middleware.HTTPRecorder
	MetricsCollector prometheus.MetricsCollector
	// MetricsPath defaults to /metrics.
	MetricsPath string
}

// NewRouter builds the gin engine: probes and /metrics at the root, the
// library API under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.LibraryHandler != nil {
		var generate []gin.HandlerFunc
		if cfg.RateLimiter != nil {
			generate = append(generate, middleware.RateLimit(cfg.RateLimiter))
		}
		cfg.LibraryHandler.RegisterRoutes(api, generate...)
	}

	return r
}

//Personal.AI order the ending
