package crash

import (
	"go.uber.org/fx"

	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// Module provides the fx dependency injection options for the crash package.
var Module = fx.Options(
	fx.Provide(newDefaultReporter),
)

// newDefaultReporter picks a Sentry-backed Reporter when cfg.Sentry.DSN is
// set, falling back to a local-only Reporter otherwise.
func newDefaultReporter(cfg *config.Config, log logger.Logger) (Reporter, error) {
	if cfg.Sentry.DSN == "" {
		return NewNoopReporter(log), nil
	}

	return NewReporter(cfg, log)
}
