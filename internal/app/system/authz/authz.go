// Package authz provides role-based authorization checks evaluated after
// token authentication. Checks are explicit per-route middleware, applied
// in routes.go files, never inferred from handler metadata.
package authz

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	"github.com/galgranov/gke-analyzer/internal/app/system/auth"
	"github.com/galgranov/gke-analyzer/internal/app/system/httpjson"
)

var (
	errNoUser  = apperr.New(apperr.Authorization, "user not found in request")
	errNoRoles = apperr.New(apperr.Authorization, "user has no roles")
)

// RequireRoles returns middleware that admits the request only when the
// authenticated principal holds at least one of the given roles. It must
// run after auth.RequireToken. With no roles listed it admits everyone,
// matching "absent role list means no restriction".
//
// Rejections carry 403 and name the roles the caller lacked.
func RequireRoles(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			p, ok := auth.CurrentUser(r)
			if !ok {
				httpjson.Error(w, logger, errNoUser)
				return
			}
			if len(p.Roles) == 0 {
				httpjson.Error(w, logger, errNoRoles)
				return
			}

			if HasAnyRole(p, roles...) {
				next.ServeHTTP(w, r)
				return
			}
			httpjson.Error(w, logger, apperr.MissingRolesError(roles))
		})
	}
}

// HasAnyRole reports whether the principal holds any of the given roles.
func HasAnyRole(p *auth.Principal, roles ...string) bool {
	for _, want := range roles {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
