package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cloo-solutions/syllabus/internal/api"
	"github.com/cloo-solutions/syllabus/internal/api/handlers"
	"github.com/cloo-solutions/syllabus/internal/api/middleware"
)

const maxJSONBodyBytes int64 = 1 << 20

type RouterConfig struct {
	APIKey          string
	CORSOrigins     []string
	MaxUploadBytes  int64
	DocumentHandler *handlers.DocumentHandler
	FaqHandler      *handlers.FaqHandler
	ChatHandler     *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = middleware.DefaultMaxUploadBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SentryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(cfg.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.APIKeyHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok", "message": "syllabus api is running"})
	}
	r.Get("/", health)
	r.Get("/health", health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.StaticAPIKey(cfg.APIKey))

		r.With(middleware.MaxBodyBytes(maxUpload)).Post("/upload", cfg.DocumentHandler.Upload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodyBytes(maxJSONBodyBytes))

			r.Route("/documents/{document_id}", func(r chi.Router) {
				r.Get("/", cfg.DocumentHandler.Get)
				r.Post("/build_faq", cfg.FaqHandler.Build)
			})

			r.Route("/faq", func(r chi.Router) {
				r.Get("/jobs/{job_id}", cfg.FaqHandler.GetJob)
				r.Get("/{faq_id}", cfg.FaqHandler.Get)
				r.Post("/{faq_id}/extend", cfg.FaqHandler.Extend)
			})

			r.Post("/chat", cfg.ChatHandler.Chat)
		})
	})

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
