// Package httpapi assembles the HTTP surface: per-context handlers plus the
// operational endpoints.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boxtribute/internal/transport/http/shared"
)

// Registrar is implemented by the per-context handlers.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter mounts every handler plus health and metrics endpoints.
func NewRouter(handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
