package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"arb-scanner/internal/config"
	"arb-scanner/internal/realtime"
)

// Server runs the HTTP/WebSocket API over the scanner and the realtime
// engine.
type Server struct {
	cfg      config.APIConfig
	provider ScanProvider
	hub      *Hub
	handlers *Handlers
	server   *http.Server
	logger   *slog.Logger
}

// NewServer creates an API server.
func NewServer(cfg config.APIConfig, provider ScanProvider, logger *slog.Logger) *Server {
	hub := NewHub(logger)
	handlers := NewHandlers(provider, hub, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/api/opportunities", handlers.HandleOpportunities)
	mux.HandleFunc("/ws", handlers.HandleWebSocket)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a forced scan can take a while
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		cfg:      cfg,
		provider: provider,
		hub:      hub,
		handlers: handlers,
		server:   server,
		logger:   logger.With("component", "api-server"),
	}
}

// Start runs the hub and the HTTP listener. Blocks until Stop or a listen
// error.
func (s *Server) Start() error {
	go s.hub.Run()

	s.logger.Info("api server starting", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop() error {
	s.logger.Info("stopping api server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// ConsumeRealtime broadcasts engine events to WebSocket clients until the
// channel closes. Call in a goroutine.
func (s *Server) ConsumeRealtime(events <-chan realtime.Event) {
	for ev := range events {
		s.hub.Broadcast(Event{
			Type:      string(ev.Type),
			Timestamp: ev.At,
			Data:      ev,
		})
	}
}
