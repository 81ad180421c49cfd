// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// appConfigKeys defines the configuration keys for the GKE analyzer API.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: GKEANALYZER_MONGO_URI, GKEANALYZER_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "gke_analyzer", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "mongo_connect_timeout", Default: "15s", Desc: "MongoDB dial timeout"},
	{Name: "mongo_server_selection_timeout", Default: "10s", Desc: "MongoDB server selection timeout"},

	{Name: "jwt_secret", Default: "dev-only-change-me-0123456789ABCDEF", Desc: "JWT signing secret (must be strong in production)"},
	{Name: "jwt_expiry", Default: "24h", Desc: "Issued-token lifetime (e.g. 24h, 90m)"},

	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt cost factor for password hashing"},

	{Name: "public_pod_limit", Default: 5, Desc: "Max pods returned by the public pods endpoint"},
	{Name: "auth_rate_limit", Default: 10, Desc: "Per-IP login/register requests allowed per minute"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GKEANALYZER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:                    appValues.String("mongo_uri"),
		MongoDatabase:               appValues.String("mongo_database"),
		MongoMaxPoolSize:            uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:            uint64(appValues.Int("mongo_min_pool_size")),
		MongoConnectTimeout:         appValues.Duration("mongo_connect_timeout", 15*time.Second),
		MongoServerSelectionTimeout: appValues.Duration("mongo_server_selection_timeout", 10*time.Second),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", 24*time.Hour),

		BcryptCost: appValues.Int("bcrypt_cost"),

		PublicPodLimit: appValues.Int("public_pod_limit"),
		AuthRateLimit:  appValues.Int("auth_rate_limit"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Startup fails fast here rather than at the first request: a malformed
// Mongo URI or an unusable token secret is a deployment mistake.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTExpiry <= 0 {
		return fmt.Errorf("jwt_expiry must be positive, got %s", appCfg.JWTExpiry)
	}

	if coreCfg.Env == "prod" && len(appCfg.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters in production")
	}
	if len(appCfg.JWTSecret) < 32 {
		logger.Warn("jwt_secret is short; 32+ chars recommended",
			zap.Int("length", len(appCfg.JWTSecret)))
	}

	return nil
}
