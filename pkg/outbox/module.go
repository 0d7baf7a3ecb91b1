package outbox

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

// Option is a functional option for configuring the outbox module.
type Option func(*moduleOptions)

// WithoutProcessor provides the Producer only. Some other process must run
// the Processor for the records to make progress.
func WithoutProcessor() Option {
	return func(opts *moduleOptions) {
		opts.withoutProcessor = true
	}
}

// NewOutboxModule provides the outbox Producer and runs the Processor with the app.
// Handlers join through AsHandler.
func NewOutboxModule(opts ...Option) fx.Option {
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
			Name:       "outbox",
			Collection: "outbox_migrations",
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
			provideRegistry,
			provideProcessor,
		),
		fx.Invoke(func(lc fx.Lifecycle, p *Processor) {
			worker.Register(lc, p)
		}),
	)
}

type handlersIn struct {
	fx.In
	Handlers []NamedHandler `group:"outbox_handlers"`
}

func provideRegistry(in handlersIn, log *zap.Logger) (Registry, error) {
	r, err := NewRegistry(in.Handlers...)
	if err != nil {
		return nil, err
	}
	log.Info("outbox handlers registered", zap.Strings("event_types", r.EventTypes()))
	return r, nil
}

type processorParams struct {
	fx.In
	Store     Store
	Registry  Registry
	Config    Config
	Log       *zap.Logger
	Tracer    trace.TracerProvider
	Meter     metric.MeterProvider
	Readiness health.ReadinessWaiter
}

func provideProcessor(p processorParams) (*Processor, error) {
	return NewProcessor(p.Store, p.Registry, p.Config, p.Log,
		WithTracerProvider(p.Tracer),
		WithMeterProvider(p.Meter),
		WithWorkerOptions(worker.WithReady(p.Readiness)),
	)
}
