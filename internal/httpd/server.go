package httpd

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/config"
)

// Server hosts the REST control surface and the realtime endpoint.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer builds the router and the HTTP server.
func NewServer(cfg *config.Config, h *Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    cfg.Addr(),
			Handler: newRouter(cfg, h, logger),
		},
		logger: logger,
	}
}

func newRouter(cfg *config.Config, h *Handler, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(allowOrigin(cfg.AllowedOrigin))

	r.Route("/api", func(r chi.Router) {
		r.Use(sharedSecret(cfg.APIToken))
		r.Post("/send", h.Send)
		r.Get("/profile", h.Profile)
		r.Get("/contacts", h.Contacts)
		r.Get("/chats", h.Chats)
		r.Post("/logout", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(sharedSecret(cfg.APIToken))
		r.Get("/ws", h.Realtime)
	})

	return r
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server stopping")
	return s.srv.Shutdown(ctx)
}
