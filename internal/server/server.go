package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/jwtly10/kid-relay/internal/config"
	"github.com/jwtly10/kid-relay/internal/metrics"
	"github.com/jwtly10/kid-relay/internal/relay"
	"github.com/jwtly10/kid-relay/internal/server/middleware"
)

type Server struct {
	handler http.Handler
	logger  *slog.Logger

	cfg *config.ServerConfig
}

func NewServer(rl *relay.Relay, ops []relay.Operation, logger *slog.Logger, cfg *config.ServerConfig) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("handler panic", "path", c.Request.URL.Path, "panic", recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}),
		middleware.RequestID(relay.RequestIDKey),
		metrics.Handler(),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if cfg.MetricsEnabled {
		engine.GET("/metrics", metrics.Exposer())
	}

	rl.Register(engine, ops)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	var handler http.Handler = middleware.WithLogging(engine, logger)
	if cfg.H2CEnabled {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	return &Server{
		handler: handler,
		logger:  logger,
		cfg:     cfg,
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in flight
// requests for up to the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr, "h2c", s.cfg.H2CEnabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining requests", "timeout", s.cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
