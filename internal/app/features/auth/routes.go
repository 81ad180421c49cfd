// internal/app/features/auth/routes.go
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// Routes returns the /auth subrouter. Credential endpoints are
// rate-limited by client IP; profile sits behind the token middleware.
func Routes(h *Handler, requireToken func(http.Handler) http.Handler, loginLimit int) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(loginLimit, time.Minute))
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
	})

	r.With(requireToken).Get("/profile", h.Profile)

	return r
}
