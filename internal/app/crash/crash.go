// Package crash reports Programming Errors (mutating the capability
// aggregator after build, duplicate SUDs, and boot-barrier timeouts) to
// Sentry immediately before the process aborts.
package crash

import (
	"time"

	"github.com/getsentry/sentry-go"

	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// Reporter captures fatal programming errors before process exit.
type Reporter interface {
	ReportFatal(err error, tags map[string]string)
}

type sentryReporter struct {
	log logger.Logger
}

// NewReporter initializes the Sentry SDK with cfg.Sentry.DSN and returns a
// Reporter. An empty DSN is a valid, no-op configuration - ReportFatal
// still logs locally even when nothing is sent upstream.
func NewReporter(cfg *config.Config, log logger.Logger) (Reporter, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:   cfg.Sentry.DSN,
		Debug: false,
	}); err != nil {
		return nil, err
	}

	return &sentryReporter{log: log.WithComponent("CRASH")}, nil
}

// ReportFatal captures err with tags, flushes the Sentry transport, and
// logs locally. The caller is responsible for aborting the process
// afterward.
func (r *sentryReporter) ReportFatal(err error, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}

		sentry.CaptureException(err)
	})

	sentry.Flush(2 * time.Second)

	event := r.log.Error().Err(err)
	for k, v := range tags {
		event = event.Str(k, v)
	}

	event.Msg("fatal programming error, aborting")
}

// NoopReporter sends nothing to Sentry and only logs locally; used where
// no Sentry DSN is configured, or in tests that must not touch the
// network.
type NoopReporter struct{ log logger.Logger }

// NewNoopReporter returns a Reporter that only logs locally.
func NewNoopReporter(log logger.Logger) Reporter {
	return &NoopReporter{log: log.WithComponent("CRASH")}
}

func (r *NoopReporter) ReportFatal(err error, tags map[string]string) {
	event := r.log.Error().Err(err)
	for k, v := range tags {
		event = event.Str(k, v)
	}

	event.Msg("fatal programming error, aborting")
}
