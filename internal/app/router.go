package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/reliefgrid/reliefgrid/internal/auth"
	"github.com/reliefgrid/reliefgrid/internal/authz"
	"github.com/reliefgrid/reliefgrid/internal/credential"
	"github.com/reliefgrid/reliefgrid/internal/dispatch"
	"github.com/reliefgrid/reliefgrid/internal/emergency"
	"github.com/reliefgrid/reliefgrid/internal/feeds"
	"github.com/reliefgrid/reliefgrid/internal/observability"
	"github.com/reliefgrid/reliefgrid/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	TokenDecoder     credential.TokenDecoder
	Gate             authz.Middleware
	AuthHandler      *auth.Handler
	DispatchHandler  *dispatch.Handler
	EmergencyHandler *emergency.Handler
	FeedsHandler     *feeds.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with ReliefGrid defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(auth.BearerMiddleware(params.TokenDecoder))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/dispatch", func(r chi.Router) {
		params.DispatchHandler.MountRoutes(r, params.Gate)
	})
	r.Route("/emergencies", func(r chi.Router) {
		params.EmergencyHandler.MountRoutes(r, params.Gate)
	})
	if params.FeedsHandler != nil {
		r.Route("/events", params.FeedsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			params.JobHandler.MountRoutes(r, params.Gate)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
