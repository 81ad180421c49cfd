// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings: HTTP port and TLS, environment mode, logging
// level/format, CORS defaults, request limits. AppConfig is everything
// specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI                    string        // connection string (e.g. mongodb://localhost:27017)
	MongoDatabase               string        // database name within MongoDB
	MongoMaxPoolSize            uint64        // driver connection pool ceiling
	MongoMinPoolSize            uint64        // driver connection pool floor
	MongoConnectTimeout         time.Duration // dial timeout for new connections
	MongoServerSelectionTimeout time.Duration // how long the driver hunts for a usable server

	// Bearer-token configuration
	JWTSecret string        // HS256 signing secret (must be strong in production)
	JWTExpiry time.Duration // issued-token lifetime

	// Password hashing
	BcryptCost int // bcrypt cost factor for stored password hashes

	// API behavior
	PublicPodLimit int // max pods returned by the unauthenticated /pods/public endpoint
	AuthRateLimit  int // per-IP requests per minute allowed on login/register
}
