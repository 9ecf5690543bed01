package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// InitUptrace installs the global OpenTelemetry providers that otelhttp and
// otelsql report to. The returned shutdown flushes pending spans and is a
// no-op when tracing is off.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	logger = logger.With("component", "uptrace")
	noop := func(context.Context) error { return nil }

	dsn := strings.TrimSpace(cfg.UptraceDSN)
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled")
		return noop, nil
	case dsn == "":
		logger.Warn("tracing disabled, UPTRACE_DSN is empty")
		return noop, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(ladderAttributes(cfg)...),
	)
	logger.Info("tracing enabled", "service_name", cfg.ServiceName, "environment", cfg.AppEnv)

	return uptrace.Shutdown, nil
}

// ladderAttributes tags every span with the storage backends in use.
func ladderAttributes(cfg config.Config) []attribute.KeyValue {
	cacheDriver := "off"
	if cfg.CacheEnabled {
		cacheDriver = cfg.CacheDriver
	}
	return []attribute.KeyValue{
		attribute.String("scutta.db_driver", cfg.DBDriver),
		attribute.String("scutta.cache_driver", cacheDriver),
		attribute.Int("scutta.leaderboard_size", cfg.LeaderboardSize),
	}
}
