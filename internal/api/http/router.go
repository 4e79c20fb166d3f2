package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/wesky93/views/internal/audit"
	"github.com/wesky93/views/internal/badge"
	"github.com/wesky93/views/internal/models"
)

// ViewService defines the interface for the core view-counting business logic.
type ViewService interface {
	// CountView records one view for the (namespace, identifier) resource
	// and returns the counter with its post-increment total. attrs carries
	// namespace-specific fields stored on first creation.
	CountView(ctx context.Context, namespace, identifier string, attrs map[string]string) (*models.Counter, error)
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
//
// Badges are embedded cross-origin (READMEs, wikis), so every route allows
// any origin for GET.
func NewRouter(logger *httplog.Logger, svc ViewService, renderer badge.Renderer, emitter audit.Emitter, badgeLabel string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", handleIndex(renderer, badgeLabel))
	r.Get("/ping", handlePing)

	r.Route("/views", func(r chi.Router) {
		r.Get("/{namespace}/{identifier}", handleCountView(svc, renderer, emitter, badgeLabel))
		r.Get("/{namespace}/{user}/{repo}", handleCountRepoView(svc, renderer, emitter, badgeLabel))
	})

	return r
}
