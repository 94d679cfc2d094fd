package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/curesight/triage-platform/internal/auth"
	"github.com/curesight/triage-platform/internal/http/handlers"
	httpmiddleware "github.com/curesight/triage-platform/internal/http/middleware"
	"github.com/curesight/triage-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger  *logging.Logger
	Analyze *handlers.AnalyzeHandler
	TTS     *handlers.TTSHandler
	Admin   *handlers.AdminHandler
	Health  *handlers.HealthHandler
	Auth    auth.Authenticator

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	r.Get("/", cfg.Health.Root)
	r.Get("/health", cfg.Health.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitPerSec > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
		}

		api.Route("/analyze", func(analyze chi.Router) {
			analyze.Post("/text", cfg.Analyze.Text)
			analyze.Post("/audio", cfg.Analyze.Audio)
			analyze.Post("/image", cfg.Analyze.Image)
		})

		api.Get("/tts", cfg.TTS.Speak)

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/login", cfg.Admin.Login)

			// Everything past login requires a valid signed token.
			admin.Group(func(protected chi.Router) {
				protected.Use(auth.RequireAdmin(cfg.Auth))
				protected.Get("/rules", cfg.Admin.GetRules)
				protected.Put("/rules", cfg.Admin.UpdateRules)
				protected.Post("/rules", cfg.Admin.UpdateRules)
				protected.Get("/content", cfg.Admin.GetContent)
				protected.Put("/content", cfg.Admin.UpdateContent)
				protected.Post("/content", cfg.Admin.UpdateContent)
				protected.Get("/logs", cfg.Admin.Logs)
				protected.Post("/notes", cfg.Admin.AddNote)
				protected.Get("/notes/{queryID}", func(w http.ResponseWriter, r *http.Request) {
					cfg.Admin.ListNotes(w, r, chi.URLParam(r, "queryID"))
				})
				protected.Post("/export", cfg.Admin.Export)
			})
		})
	})

	return r
}
