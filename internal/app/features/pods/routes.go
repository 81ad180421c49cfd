// internal/app/features/pods/routes.go
package pods

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /pods subrouter. The test and public endpoints are
// reachable without a token; everything else requires one.
func Routes(h *Handler, requireToken func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/test", h.Test)
	r.Get("/public", h.Public)

	r.Group(func(r chi.Router) {
		r.Use(requireToken)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
