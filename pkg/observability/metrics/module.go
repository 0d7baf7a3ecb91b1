// Package metrics supplies the MeterProvider the outbox, saga and fan-out
// instruments are created from.
package metrics

import (
	"context"

	appconfig "github.com/Sokol111/streamflix-reliability/pkg/core/config"
	"github.com/Sokol111/streamflix-reliability/pkg/core/health"
	otelconfig "github.com/Sokol111/streamflix-reliability/pkg/observability/config"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type providerParams struct {
	fx.In
	Lc        fx.Lifecycle
	Log       *zap.Logger
	Cfg       otelconfig.Config
	AppCfg    appconfig.AppConfig
	Readiness health.ComponentManager
}

// NewMetricsModule provides a metric.MeterProvider. With metrics disabled it
// is a noop provider, so processors create their instruments unconditionally.
func NewMetricsModule() fx.Option {
	return fx.Module("metrics",
		fx.Provide(provideMeterProvider),
		fx.Invoke(func(metric.MeterProvider) {}),
	)
}

func provideMeterProvider(p providerParams) (metric.MeterProvider, error) {
	log := p.Log.With(zap.String("component", "metrics"))
	if !p.Cfg.Metrics.Enabled {
		log.Info("metrics disabled")
		return noop.NewMeterProvider(), nil
	}

	provider, err := newMeterProvider(context.Background(), p.Cfg, p.AppCfg)
	if err != nil {
		return nil, err
	}

	markReady := p.Readiness.AddComponent(otelconfig.MetricsComponentName)
	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			otel.SetMeterProvider(provider)
			if err := otelruntime.Start(
				otelruntime.WithMeterProvider(provider),
				otelruntime.WithMinimumReadMemStatsInterval(otelconfig.DefaultRuntimeStatsInterval),
			); err != nil {
				log.Warn("failed to start runtime metrics", zap.Error(err))
			}
			log.Info("metrics exporting",
				zap.String("endpoint", p.Cfg.OtelCollectorEndpoint),
				zap.Duration("interval", p.Cfg.Metrics.Interval),
			)
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Flushes the last interval of processor counters.
			shutdownCtx, cancel := context.WithTimeout(ctx, otelconfig.DefaultShutdownTimeout)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		},
	})

	return provider, nil
}
