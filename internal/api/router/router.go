// Package router assembles the HTTP routing tree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agendazap/agendazap/internal/http/handlers"
	httpmiddleware "github.com/agendazap/agendazap/internal/http/middleware"
	"github.com/agendazap/agendazap/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	MessageWebhook *handlers.MessageWebhookHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	if cfg.MessageWebhook != nil {
		r.Post("/webhooks/message", cfg.MessageWebhook.Handle)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
