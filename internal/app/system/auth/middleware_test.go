package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type stubFetcher struct {
	users map[string]*Principal
}

func (f *stubFetcher) FetchUser(_ context.Context, userID string) *Principal {
	return f.users[userID]
}

func okHandler(captured **Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := CurrentUser(r); ok {
			*captured = p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireToken_ValidToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	fetcher := &stubFetcher{users: map[string]*Principal{
		"user-1": {ID: "user-1", Username: "alice", Roles: []string{"user"}},
	}}

	tok, err := tm.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	var got *Principal
	mw := RequireToken(tm, fetcher, false, zap.NewNop())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	mw(okHandler(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.Username != "alice" {
		t.Fatalf("principal = %+v, want alice", got)
	}
}

func TestRequireToken_MissingOrMalformedHeader(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	mw := RequireToken(tm, &stubFetcher{}, false, zap.NewNop())

	for _, header := range []string{"", "Token abc", "bearer lowercase"} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		var got *Principal
		mw(okHandler(&got)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireToken_UnknownUser(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	mw := RequireToken(tm, &stubFetcher{users: map[string]*Principal{}}, false, zap.NewNop())

	tok, err := tm.Issue("ghost", "ghost")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	var got *Principal
	mw(okHandler(&got)).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func signTestToken(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		Username:    "tester",
		IsTestToken: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "test-user",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tok
}

func TestRequireToken_TestTokenDevMode(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	// Fetcher knows no users: the dev shortcut must not consult it.
	mw := RequireToken(tm, &stubFetcher{users: map[string]*Principal{}}, true, zap.NewNop())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "test-secret"))
	rec := httptest.NewRecorder()
	var got *Principal
	mw(okHandler(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil {
		t.Fatal("no principal injected")
	}
	if got.Email != "test@example.com" {
		t.Errorf("Email = %q, want test@example.com", got.Email)
	}
	if !hasRole(got, "admin") || !hasRole(got, "user") {
		t.Errorf("Roles = %v, want user and admin", got.Roles)
	}
}

func TestRequireToken_TestTokenIgnoredOutsideDev(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	mw := RequireToken(tm, &stubFetcher{users: map[string]*Principal{}}, false, zap.NewNop())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "test-secret"))
	rec := httptest.NewRecorder()
	var got *Principal
	mw(okHandler(&got)).ServeHTTP(rec, req)

	// Outside dev mode the subject goes through normal resolution and
	// "test-user" does not exist.
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func hasRole(p *Principal, role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
