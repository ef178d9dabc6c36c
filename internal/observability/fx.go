package observability

import (
	"github.com/varejotech/balcao/internal/observability/logger"
	"github.com/varejotech/balcao/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideHTTPMetrics,
		provideMetrics,
	),
)

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

func provideHTTPMetrics(cfg Config) *metrics.HTTPMetrics {
	return metrics.NewHTTPMetrics(cfg.ServiceName)
}

func provideMetrics(cfg Config) *metrics.Metrics {
	return metrics.New(cfg.ServiceName)
}
