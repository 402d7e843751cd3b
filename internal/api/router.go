package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fkid009/MLflow-study/internal/tracing"
)

func (s *Server) routes(h *handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(corsMiddleware(s.opts.CORSOrigins))
	}
	if n := s.opts.Config.RateLimitRequests; n > 0 {
		r.Use(rateLimitMiddleware(n, s.opts.Config.RateLimitWindow))
	}
	r.Use(tracing.NewHTTPMiddleware(s.opts.Tracer, routePattern))
	r.Use(metricsMiddleware)

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/model-versions/resolve", h.resolve)

	r.Route("/registered-models", func(r chi.Router) {
		r.Post("/", h.createRegisteredModel)
		r.Get("/", h.listRegisteredModels)

		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getRegisteredModel)

			r.Get("/versions", h.listVersions)
			r.Post("/versions", h.createVersion)
			r.Get("/versions/{version}", h.getVersion)
			r.Post("/versions/{version}/stage", h.transitionStage)

			r.Put("/aliases/{alias}", h.setAlias)
			r.Get("/aliases/{alias}", h.getAlias)
			r.Delete("/aliases/{alias}", h.deleteAlias)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "no route for "+r.Method+" "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path, nil)
	})

	return r
}
