package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge/telehealth-platform/internal/carerequest"
	"github.com/carebridge/telehealth-platform/internal/directory"
	httpmiddleware "github.com/carebridge/telehealth-platform/internal/http/middleware"
	"github.com/carebridge/telehealth-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	DirectoryHandler   *directory.Handler
	CareRequestHandler *carerequest.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.DirectoryHandler != nil {
		r.Mount("/directory", cfg.DirectoryHandler.Routes())
	}
	if cfg.CareRequestHandler != nil {
		r.Mount("/care-requests", cfg.CareRequestHandler.Routes())
	}

	return r
}
