package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/intelmarket/gestor-pav/internal/api/handlers"
	"github.com/intelmarket/gestor-pav/internal/api/middleware"
	"github.com/intelmarket/gestor-pav/internal/config"
	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/intelmarket/gestor-pav/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services is what the HTTP layer needs from the service container
type Services interface {
	handlers.HealthReporter
	Batch() services.BatchServiceInterface
	Enricher() services.EntityEnricherInterface
	Cache() services.CacheServiceInterface
}

// healthSources adds the server's own components to the service report
type healthSources struct {
	Services
	rateLimiter *middleware.RateLimiter
}

func (h healthSources) Health() map[string]interface{} {
	health := h.Services.Health()
	if health == nil {
		health = make(map[string]interface{})
	}
	health["rate_limiter"] = h.rateLimiter.GetStats()
	return health
}

// Server represents the HTTP server
type Server struct {
	Router      *gin.Engine
	config      *config.Config
	logger      *logrus.Logger
	services    Services
	rateLimiter *middleware.RateLimiter
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services Services) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// Close stops background work owned by the server
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	s.Router = gin.New()
	s.Router.HandleMethodNotAllowed = true

	// forwarded headers are only honored from configured proxies
	if err := s.Router.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Invalid TRUSTED_PROXIES, forwarded headers ignored")
		_ = s.Router.SetTrustedProxies(nil)
	}

	// Global middleware
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.Metrics())
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())

	s.rateLimiter = middleware.NewRateLimiter(s.config.Security.RateLimit)

	healthHandler := handlers.NewHealthHandler(healthSources{Services: s.services, rateLimiter: s.rateLimiter}, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)

	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	if !s.config.IsProduction() {
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		s.Router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})
	}

	enrichmentHandler := handlers.NewEnrichmentHandler(
		s.services.Batch(),
		s.services.Enricher(),
		s.config.Enrichment.MaxEntities,
		s.logger,
	)

	// legacy path kept for existing callers
	s.Router.POST("/api/ia-enriquecer-batch", s.rateLimiter.Middleware(), enrichmentHandler.EnrichBatch)

	v1 := s.Router.Group("/api/v1")
	v1.Use(s.rateLimiter.Middleware())
	{
		v1.POST("/ia-enriquecer-batch", enrichmentHandler.EnrichBatch)
		v1.POST("/ia-enriquecer", enrichmentHandler.EnrichEntity)

		cache := v1.Group("/cache")
		{
			cacheHandler := handlers.NewCacheHandler(s.services.Cache(), s.logger)
			cache.GET("/stats", cacheHandler.GetStats)
			cache.DELETE("/clear", middleware.AdminAuth(s.config.Security.AdminToken), cacheHandler.Clear)
			cache.DELETE("/:key", middleware.AdminAuth(s.config.Security.AdminToken), cacheHandler.Delete)
		}
	}

	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Not Found",
			Message:   "The requested resource was not found",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})

	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.NewFailure("Método não permitido"))
	})
}
