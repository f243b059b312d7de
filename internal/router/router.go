package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	appointmenth "github.com/dentalcare/booking-api/internal/handler/appointment"
	prometheush "github.com/dentalcare/booking-api/internal/handler/prometheus"
	"github.com/dentalcare/booking-api/internal/middleware"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups every route owner the router mounts.
type Handlers struct {
	Health      Handler
	Roster      Handler
	Patient     Handler
	Auth        Handler
	Appointment *appointmenth.Handler
	Metrics     *prometheush.Handler
}

type RouterConfig struct {
	Mode           string
	ServiceName    string
	Tracing        bool
	RequestTimeout time.Duration
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	MaxBodySize    int64
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *metrics.Metrics
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, m *metrics.Metrics, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  m,
	}

	// Add core middlewares
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)
	if config.Tracing {
		engine.Use(otelgin.Middleware(config.ServiceName))
	}

	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodySize > 0 {
		sizeLimit.MaxBodySize = config.MaxBodySize
	}
	timeout := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeout.Duration = config.RequestTimeout
	}
	engine.Use(
		middleware.SizeLimit(sizeLimit),
		middleware.Timeout(timeout),
		middleware.ErrorHandler(),
	)

	r.setup()
	return r
}

func (r *Router) setup() {
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics.Handler())
	}

	api := r.engine.Group("/api/v1")

	r.handlers.Health.RegisterRoutes(api)

	// Public routes
	r.handlers.Roster.RegisterRoutes(api)
	r.handlers.Patient.RegisterRoutes(api)
	r.handlers.Appointment.RegisterRoutes(api)

	// Admin routes
	admin := api.Group("/admin")
	r.handlers.Auth.RegisterRoutes(admin)

	protected := admin.Group("")
	protected.Use(r.auth.RequireAdmin())
	r.handlers.Appointment.RegisterAdminRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		r.metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
