package saga

import (
	"embed"

	"github.com/Sokol111/streamflix-reliability/pkg/core/health"
	"github.com/Sokol111/streamflix-reliability/pkg/core/worker"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo/migrations"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

type moduleOptions struct {
	withoutProcessor bool
}

// Option is a functional option for configuring the saga module.
type Option func(*moduleOptions)

// WithoutProcessor provides the Producer only. Some other process must run
// the Processor for the sagas to make progress.
func WithoutProcessor() Option {
	return func(opts *moduleOptions) {
		opts.withoutProcessor = true
	}
}

// NewSagaModule provides the saga Producer and runs the Processor with the app.
// Steps join through AsStep.
func NewSagaModule(opts ...Option) fx.Option {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	base := fx.Options(
		fx.Provide(
			newStore,
			newProducer,
		),
		migrations.ProvideSource(migrations.Source{
			Name:       "saga",
			Collection: "saga_migrations",
			FS:         migrationsFS,
			Dir:        "migrations",
		}),
	)
	if cfg.withoutProcessor {
		return base
	}

	return fx.Options(
		base,
		fx.Provide(
			newConfig,
			provideStepRegistry,
			provideProcessor,
		),
		fx.Invoke(func(lc fx.Lifecycle, p *Processor) {
			worker.Register(lc, p)
		}),
	)
}

type stepsIn struct {
	fx.In
	Steps []NamedStep `group:"saga_steps"`
}

func provideStepRegistry(in stepsIn, log *zap.Logger) (StepRegistry, error) {
	r, err := NewStepRegistry(in.Steps...)
	if err != nil {
		return nil, err
	}
	log.Info("saga steps registered", zap.Strings("steps", r.Names()))
	return r, nil
}

type processorParams struct {
	fx.In
	Store     Store
	Steps     StepRegistry
	Config    Config
	Log       *zap.Logger
	Tracer    trace.TracerProvider
	Meter     metric.MeterProvider
	Readiness health.ReadinessWaiter
}

func provideProcessor(p processorParams) (*Processor, error) {
	return NewProcessor(p.Store, p.Steps, p.Config, p.Log,
		WithTracerProvider(p.Tracer),
		WithMeterProvider(p.Meter),
		WithWorkerOptions(worker.WithReady(p.Readiness)),
	)
}
