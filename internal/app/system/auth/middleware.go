// Package auth provides bearer-token authentication: token issue/verify
// and the middleware that resolves a verified token into a request-scoped
// Principal. Authorization (role checks) lives in system/authz.
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
	"github.com/galgranov/gke-analyzer/internal/app/system/httpjson"
)

// Principal is the authenticated caller injected into r.Context().
type Principal struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentUser returns the authenticated principal and a found flag.
func CurrentUser(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

// WithPrincipal returns a request whose context carries the principal.
// Exposed for handler tests.
func WithPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// UserFetcher resolves a verified token subject to fresh user data.
// Implementations return nil when the user is missing, inactive, or the
// id is malformed; the middleware rejects the request in all such cases.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *Principal
}

var errMissingToken = apperr.New(apperr.Authentication, "missing bearer token")
var errUnknownUser = apperr.New(apperr.Authentication, "user not found or inactive")

// RequireToken returns middleware that extracts and verifies a bearer
// token, resolves it to a Principal, and rejects the request with 401
// before any handler runs when validation fails.
//
// When devMode is true, a token carrying the isTestToken claim bypasses
// the user lookup and injects a synthetic admin-capable user. Outside dev
// mode the claim is ignored and the token goes through normal resolution.
func RequireToken(tm *TokenManager, fetcher UserFetcher, devMode bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httpjson.Error(w, logger, errMissingToken)
				return
			}

			claims, err := tm.Parse(raw)
			if err != nil {
				httpjson.Error(w, logger, err)
				return
			}

			if devMode && claims.IsTestToken {
				next.ServeHTTP(w, WithPrincipal(r, testPrincipal(claims)))
				return
			}

			p := fetcher.FetchUser(r.Context(), claims.Subject)
			if p == nil {
				httpjson.Error(w, logger, errUnknownUser)
				return
			}
			next.ServeHTTP(w, WithPrincipal(r, p))
		})
	}
}

// testPrincipal is the synthetic user behind the dev-only test token.
// It carries the admin role so every endpoint is exercisable locally.
func testPrincipal(claims *Claims) *Principal {
	return &Principal{
		ID:        claims.Subject,
		Username:  claims.Username,
		Email:     "test@example.com",
		FirstName: "Test",
		LastName:  "User",
		Roles:     []string{"user", "admin"},
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
