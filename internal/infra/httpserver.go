package infra

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer serves the webhook, health and metrics endpoints.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer routes net/http's own error log (bad requests, TLS and accept errors) into logger.
func NewHTTPServer(cfg *Config, handler http.Handler, logger zerolog.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		// Telegram updates are small; the webhook body itself is capped by the handler.
		MaxHeaderBytes: 64 << 10,
		ErrorLog:       log.New(serverErrorWriter{logger.With().Str("component", "http").Logger()}, "", 0),
	}

	return &HTTPServer{server: srv}
}

type serverErrorWriter struct {
	logger zerolog.Logger
}

func (w serverErrorWriter) Write(p []byte) (int, error) {
	w.logger.Warn().Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
