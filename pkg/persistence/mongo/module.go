package mongo

import (
	"context"

	"github.com/Sokol111/streamflix-reliability/pkg/core/health"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type mongoOptions struct {
	config *Config
}

// Option is a functional option for configuring the mongo module.
type Option func(*mongoOptions)

// WithMongoConfig provides a static Config instead of reading viper.
func WithMongoConfig(cfg Config) Option {
	return func(opts *mongoOptions) {
		opts.config = &cfg
	}
}

// NewMongoModule provides MongoDB components for dependency injection.
func NewMongoModule(opts ...Option) fx.Option {
	o := &mongoOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		fx.Supply(o),
		fx.Provide(
			provideConfig,
			provideMongo,
			newTxManager,
		),
	)
}

func provideConfig(opts *mongoOptions, v *viper.Viper) (Config, error) {
	if opts.config != nil {
		return *opts.config, opts.config.Validate()
	}
	return newConfig(v)
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, conf Config, tp trace.TracerProvider, readiness health.ComponentManager) (Mongo, Admin, error) {
	m, err := newMongo(log.With(zap.String("component", "mongo")), conf, tp)
	if err != nil {
		return nil, nil, err
	}

	markReady := readiness.AddComponent("mongo")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.connect(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return m.disconnect(ctx)
		},
	})

	return m, m, nil
}
