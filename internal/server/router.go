package server

import (
	"net/http"

	jsonwriter "github.com/dgellow/webex-implicit/internal/json"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the demo routes. gatherer backs /metrics.
func NewRouter(handlers *LoginHandlers, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(
		NewRequestIDMiddleware(),
		NewRecoverMiddleware("http"),
		NewLoggerMiddleware("http"),
		NewSecurityHeadersMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonwriter.WriteNotFound(w, "no route for "+r.URL.Path)
	})

	r.Method(http.MethodGet, "/health", NewHealthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/", handlers.IndexHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/link", handlers.LinkHandler)
		r.Post("/fragment", handlers.FragmentHandler)
		r.Get("/me", handlers.MeHandler)
	})

	return r
}
