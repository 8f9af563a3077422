package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/config"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/jobs"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/store"
)

// NewRouter wires every endpoint. s may be nil when no archive is
// configured; the run endpoints then answer 503.
func NewRouter(engine *evaluation.Engine, s store.Store, jm *jobs.Manager, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimit))

	methods := NewMethodsHandler(engine.Settings())
	runs := NewEvaluationsHandler(engine, s)
	explain := NewExplainHandler(s)
	background := NewJobsHandler(engine, jm)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scales", methods.Scales)
		r.Post("/weights", methods.Weights)
		r.Post("/hierarchy/weights", methods.HierarchyWeights)
		r.Post("/rankings", methods.Rankings)
		r.Post("/sensitivity", methods.Sensitivity)
		r.Post("/sensitivity/all", methods.SensitivityAll)
		r.Post("/robustness", methods.Robustness)

		r.Post("/evaluations", runs.Create)
		r.Get("/evaluations", runs.List)
		r.Get("/evaluations/{id}", runs.Get)
		r.Delete("/evaluations/{id}", runs.Delete)
		r.Get("/evaluations/{id}/explain", explain.Explain)

		r.Post("/jobs/sensitivity", background.Sensitivity)
		r.Get("/jobs", background.List)
		r.Get("/jobs/{id}", background.Get)
		r.Delete("/jobs/{id}", background.Cancel)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
