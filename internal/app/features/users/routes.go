// internal/app/features/users/routes.go
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/system/authz"
)

// Routes returns the /users subrouter. Every route requires a token;
// create, list, and delete additionally require the admin role. Reads by
// id and partial updates are open to any authenticated user.
func Routes(h *Handler, requireToken func(http.Handler) http.Handler, logger *zap.Logger) chi.Router {
	admin := authz.RequireRoles(logger, "admin")

	r := chi.NewRouter()
	r.Use(requireToken)

	r.With(admin).Post("/", h.Create)
	r.With(admin).Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.With(admin).Delete("/{id}", h.Delete)

	return r
}
