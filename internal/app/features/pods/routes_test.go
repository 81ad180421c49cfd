package pods_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/features/pods"
	podstore "github.com/galgranov/gke-analyzer/internal/app/store/pods"
	userstore "github.com/galgranov/gke-analyzer/internal/app/store/users"
	sysauth "github.com/galgranov/gke-analyzer/internal/app/system/auth"
	"github.com/galgranov/gke-analyzer/internal/testutil"
)

// The test and public endpoints must behave identically whether the
// request carries no token, garbage, or a valid one; everything else is
// rejected without a valid token.
func TestRoutes_PublicBypassAndGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "alice", "alice@example.com", "password123")

	tokens := sysauth.NewTokenManager("test-secret", time.Hour)
	requireToken := sysauth.RequireToken(tokens, userstore.NewFetcher(db), false, zap.NewNop())
	h := pods.NewHandler(podstore.New(db), 5, zap.NewNop())
	router := pods.Routes(h, requireToken)

	valid, err := tokens.Issue(user.ID.Hex(), user.Username)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	serve := func(path, token string) int {
		req := httptest.NewRequest("GET", path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	for _, path := range []string{"/test", "/public"} {
		for _, token := range []string{"", "garbage-token", valid} {
			if code := serve(path, token); code != http.StatusOK {
				t.Errorf("GET %s with token %q: status = %d, want 200", path, token, code)
			}
		}
	}

	if code := serve("/", ""); code != http.StatusUnauthorized {
		t.Errorf("GET / without token: status = %d, want 401", code)
	}
	if code := serve("/", "garbage-token"); code != http.StatusUnauthorized {
		t.Errorf("GET / with bad token: status = %d, want 401", code)
	}
	if code := serve("/", valid); code != http.StatusOK {
		t.Errorf("GET / with valid token: status = %d, want 200", code)
	}
}
