package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"veostudio/internal/http/handlers"
	"veostudio/internal/middleware"
)

// RouterConfig holds the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins []string
	DefaultLocale  string
	Metrics        http.Handler
	Logger         zerolog.Logger
}

func NewRouter(app *handlers.App, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(cfg.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N(cfg.DefaultLocale),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/options", app.Options)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", app.Session)
			r.Post("/credential", app.SessionCredential)
		})

		r.Route("/generations", func(r chi.Router) {
			r.Post("/", app.GenerationsCreate)
			r.Post("/cancel", app.GenerationsCancel)
			r.Get("/history", app.GenerationsHistory)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/{id}", app.AssetServe)
			r.Delete("/{id}", app.AssetDelete)
		})
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return r
}
