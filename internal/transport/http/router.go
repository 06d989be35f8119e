package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"traceport/internal/platform/middleware"
)

// HealthChecker reports whether an optional backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RouterConfig collects everything the router mounts.
type RouterConfig struct {
	Templates      *TemplateHandler
	Carriers       *PassportDataHandler
	Passports      *PassportHandler
	TokenValidator middleware.TokenValidator
	Logger         *slog.Logger
	Cache          HealthChecker
}

// NewRouter wires the HTTP surface: an authenticated private API for
// templates and carriers, and an anonymous public API for passport views.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", handleHealth(cfg.Cache))
	r.Handle("/metrics", promhttp.Handler())

	// Public read path. No auth: a passport link printed on a product must
	// resolve for anyone scanning it.
	cfg.Passports.Register(r)

	r.Group(func(private chi.Router) {
		private.Use(middleware.RequireAuth(cfg.TokenValidator, cfg.Logger))
		cfg.Templates.Register(private)
		cfg.Carriers.Register(private)
	})

	return r
}

func handleHealth(cache HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				status["cache"] = "unreachable"
			} else {
				status["cache"] = "ok"
			}
		}
		writeJSON(w, http.StatusOK, status)
	}
}
