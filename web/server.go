package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chatbot/config"
	"chatbot/web/handlers"
	"chatbot/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router  *gin.Engine
	service handlers.ChatService
	logger  *zap.Logger
	config  *config.Config
	limiter *middleware.ClientRateLimiter
}

func NewServer(service handlers.ChatService, logger *zap.Logger, cfg *config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestContext(logger))
	router.Use(middleware.CORS())

	server := &Server{
		router:  router,
		service: service,
		logger:  logger,
		config:  cfg,
	}

	if cfg.RateLimitRequestsPerMin > 0 {
		limiter, err := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequestsPerMin,
			BurstSize:         cfg.RateLimitBurstSize,
			MaxClients:        cfg.RateLimitMaxClients,
		}, logger)
		if err != nil {
			return nil, err
		}
		server.limiter = limiter
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	chatHandler := handlers.NewChatHandler(s.service)

	s.router.GET("/healthz", chatHandler.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat := s.router.Group("/")
	if s.limiter != nil {
		chat.Use(middleware.RateLimitMiddleware(s.limiter))
	}
	for _, path := range []string{"/", "/ai"} {
		chat.GET(path, chatHandler.Handle)
		chat.POST(path, chatHandler.Handle)
		chat.DELETE(path, chatHandler.Handle)
		chat.OPTIONS(path, chatHandler.Handle)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or a failed listener
	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("Web server failed to start", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
