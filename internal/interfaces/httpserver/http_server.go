package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	continuumdocs "github.com/continuumhq/continuum-server/docs/swagger"
	"github.com/continuumhq/continuum-server/internal/config"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/handlers"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/middlewares"
	v1 "github.com/continuumhq/continuum-server/internal/interfaces/httpserver/routes/v1"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, provider *handlers.Provider, users user.Repository) *HttpServer {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	continuumdocs.SwaggerInfo.BasePath = cfg.BasePath

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	if cfg.EnableTracing {
		engine.Use(middlewares.TracingMiddleware(cfg.ServiceName))
	}
	engine.Use(middlewares.LoggingMiddleware(log))
	engine.Use(middlewares.MetricsMiddleware())
	engine.Use(middlewares.CORSMiddleware())

	registerCoreRoutes(engine, cfg)

	routes := v1.NewRoutes(provider, cfg.AuthSecret, users)
	routes.Register(engine.Group("/"))

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// RunMetrics serves the Prometheus scrape endpoint on its own port so the
// scrape surface never shares the service listener.
func (s *HttpServer) RunMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    s.cfg.MetricsAddr(),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.MetricsAddr()).Msg("metrics server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": cfg.ServiceName, "status": "ok"})
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/v1/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     cfg.ServiceName,
			"version":     config.Version,
			"environment": cfg.Environment,
		})
	})

	if cfg.EnableSwagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
