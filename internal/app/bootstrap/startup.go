// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// Nothing needs warming here today; handler timeouts keep their defaults
// (see system/timeouts.Configure if that changes).
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if coreCfg.Env == "dev" {
		logger.Warn("dev mode: test tokens are honored by the token guard")
	}
	return nil
}
