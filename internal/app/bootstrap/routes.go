// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authfeature "github.com/galgranov/gke-analyzer/internal/app/features/auth"
	healthfeature "github.com/galgranov/gke-analyzer/internal/app/features/health"
	podsfeature "github.com/galgranov/gke-analyzer/internal/app/features/pods"
	usersfeature "github.com/galgranov/gke-analyzer/internal/app/features/users"
	podstore "github.com/galgranov/gke-analyzer/internal/app/store/pods"
	userstore "github.com/galgranov/gke-analyzer/internal/app/store/users"
	sysauth "github.com/galgranov/gke-analyzer/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app. WAFFLE calls it after configuration, DB connections, schema setup,
// and Startup hooks have completed.
//
// Guard evaluation order is explicit and set here, per route: the token
// middleware first (skipped entirely for public routes), then any role
// middleware, then the handler. No route metadata is inferred.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	users := userstore.New(deps.MongoDatabase, appCfg.BcryptCost)
	pods := podstore.New(deps.MongoDatabase)

	tokens := sysauth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTExpiry)

	// The token guard re-fetches the user on every request so role changes
	// and deactivations take effect immediately. Dev mode additionally
	// honors the synthetic test token.
	devMode := coreCfg.Env == "dev"
	requireToken := sysauth.RequireToken(tokens, userstore.NewFetcher(deps.MongoDatabase), devMode, logger)

	r := chi.NewRouter()

	// Browser front-ends live on another origin; the API is token-based,
	// so credentials stay off and Authorization must be allowed through.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health probes for orchestrators and load balancers
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Authentication
	authSvc := authfeature.NewService(users, tokens, logger)
	authHandler := authfeature.NewHandler(authSvc, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, requireToken, appCfg.AuthRateLimit))

	// Pod records
	podsHandler := podsfeature.NewHandler(pods, appCfg.PublicPodLimit, logger)
	r.Mount("/pods", podsfeature.Routes(podsHandler, requireToken))

	// User management
	usersHandler := usersfeature.NewHandler(users, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, requireToken, logger))

	return r, nil
}
