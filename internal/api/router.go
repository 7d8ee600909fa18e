package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/service"
)

// HealthCheckFunc reports whether a backing dependency is reachable
type HealthCheckFunc func(ctx context.Context) error

// RouterOption configures optional router endpoints
type RouterOption func(*routerOptions)

type routerOptions struct {
	gatherer prometheus.Gatherer
	health   HealthCheckFunc
}

// WithMetrics serves the gatherer's metrics on /metrics
func WithMetrics(gatherer prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) {
		o.gatherer = gatherer
	}
}

// WithHealthCheck makes /health report unhealthy when check fails
func WithHealthCheck(check HealthCheckFunc) RouterOption {
	return func(o *routerOptions) {
		o.health = check
	}
}

// healthCheckTimeout bounds the dependency check behind /health
const healthCheckTimeout = 2 * time.Second

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, opts ...RouterOption) *gin.Engine {
	var options routerOptions
	for _, opt := range opts {
		opt(&options)
	}

	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	autoPostHandler := NewAutoPostHandler(services, cfg, log)
	keywordHandler := NewKeywordHandler(services, cfg, log)
	postHandler := NewPostHandler(services, log)
	runHandler := NewRunHandler(services, log)
	exportHandler := NewExportHandler(services, log)
	importHandler := NewImportHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthHandler(options.health, log))
	router.GET("/stats", statsHandler(services))
	if options.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(options.gatherer, promhttp.HandlerOpts{})))
	}

	// API v1
	v1 := router.Group("/v1")
	{
		// Public endpoints
		v1.GET("/keywords/trending", keywordHandler.Trending)

		posts := v1.Group("/posts")
		{
			posts.GET("", postHandler.ListPosts)
			posts.GET("/:slug", postHandler.GetPost)
			posts.POST("/:id/like", postHandler.LikePost)
		}

		// Admin endpoints
		admin := v1.Group("/admin", adminAuthMiddleware(cfg.Admin.Token))
		{
			adminPosts := admin.Group("/posts")
			{
				adminPosts.POST("/auto-generate", autoPostHandler.AutoGenerate)
				adminPosts.POST("", postHandler.CreatePost)
				adminPosts.GET("/:id", postHandler.AdminGetPost)
				adminPosts.PUT("/:id", postHandler.UpdatePost)
				adminPosts.DELETE("/:id", postHandler.DeletePost)
			}
			admin.GET("/dashboard", postHandler.Dashboard)

			keywords := admin.Group("/keywords")
			{
				keywords.GET("", keywordHandler.ListKeywords)
				keywords.POST("/collect", keywordHandler.Collect)
				keywords.POST("/import", importHandler.ImportKeywords)
				keywords.DELETE("", keywordHandler.DeleteAllKeywords)
				keywords.DELETE("/:id", keywordHandler.DeleteKeyword)
			}

			admin.GET("/exports", exportHandler.StreamExport)

			runs := admin.Group("/runs")
			{
				runs.GET("", runHandler.ListRuns)
				runs.GET("/:run_id", runHandler.GetRun)
				runs.GET("/:run_id/errors", runHandler.GetRunErrors)
			}
		}
	}

	return router
}

// healthHandler returns the health status, checking the database when configured
func healthHandler(check HealthCheckFunc, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if check != nil {
			ctx, cancel := contextWithTimeout(c, healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "trendscanner-api",
		})
	}
}

// statsHandler returns post and keyword counters
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.Post.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  stats,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// adminAuthMiddleware requires the admin token as a bearer token or in
// X-Admin-Token. An empty configured token disables the admin routes.
func adminAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin API is disabled"})
			return
		}

		provided := c.GetHeader("X-Admin-Token")
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			provided = strings.TrimPrefix(auth, "Bearer ")
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}

// pathID returns the UUID path parameter in canonical form. Malformed IDs
// cannot match a stored row, so they get the same 404 as a missing one.
func pathID(c *gin.Context, param, notFound string) (string, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return "", false
	}
	return id.String(), true
}
