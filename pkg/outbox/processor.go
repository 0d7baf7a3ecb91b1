package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/Sokol111/streamflix-reliability/pkg/core/worker"
	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/Sokol111/streamflix-reliability/pkg/observability/tracing"
	"github.com/Sokol111/streamflix-reliability/pkg/retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const tracerName = "github.com/Sokol111/streamflix-reliability/pkg/outbox"

// Processor delivers due records to their handlers on a fixed interval.
//
// With claim mode none, the status filter followed by an immediate update is
// the only guard against double delivery: run a single live instance.
// Claim mode lease leases every record before dispatching it.
type Processor struct {
	store    Store
	registry Registry
	conf     Config
	owner    string
	clock    func() time.Time
	log      *zap.Logger
	tracer   trace.Tracer
	meter    metric.MeterProvider
	metrics  *processorMetrics
	worker   *worker.Periodic
	workerOp []worker.Option
}

type ProcessorOption func(*Processor)

// WithClock replaces time.Now as the source of "now".
func WithClock(clock func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.clock = clock
	}
}

// WithOwnerID sets the lease owner id. Defaults to a random UUID.
func WithOwnerID(id string) ProcessorOption {
	return func(p *Processor) {
		p.owner = id
	}
}

func WithTracerProvider(tp trace.TracerProvider) ProcessorOption {
	return func(p *Processor) {
		p.tracer = tp.Tracer(tracerName)
	}
}

func WithMeterProvider(mp metric.MeterProvider) ProcessorOption {
	return func(p *Processor) {
		p.meter = mp
	}
}

// WithWorkerOptions passes options to the underlying periodic worker.
func WithWorkerOptions(opts ...worker.Option) ProcessorOption {
	return func(p *Processor) {
		p.workerOp = append(p.workerOp, opts...)
	}
}

func NewProcessor(store Store, registry Registry, conf Config, log *zap.Logger, opts ...ProcessorOption) (*Processor, error) {
	log = log.With(zap.String("component", "outbox"))
	p := &Processor{
		store:    store,
		registry: registry,
		conf:     conf,
		owner:    lease.NewOwnerID(),
		clock:    func() time.Time { return time.Now().UTC() },
		log:      log,
		tracer:   tracenoop.NewTracerProvider().Tracer(tracerName),
		meter:    metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(p)
	}

	m, err := newProcessorMetrics(p.meter)
	if err != nil {
		return nil, err
	}
	p.metrics = m
	p.worker = worker.NewPeriodic("outbox processor", conf.Interval, p.RunBatch, log, p.workerOp...)
	return p, nil
}

// Start begins polling. Calling Start again while running does nothing.
func (p *Processor) Start() {
	p.worker.Start()
}

// Stop ends polling and waits for the current batch.
func (p *Processor) Stop() {
	p.worker.Stop()
}

// RunBatch processes one batch of due records, sequentially and oldest first.
// A failing record never affects the others.
func (p *Processor) RunBatch(ctx context.Context) error {
	started := time.Now()
	defer func() {
		p.metrics.batchDuration.Record(ctx, time.Since(started).Seconds(),
			metric.WithAttributes(attribute.String("processor", "outbox")))
	}()

	records, err := p.store.FindDue(ctx, DueQuery{
		Now:       p.clock(),
		Limit:     p.conf.BatchSize,
		Unclaimed: p.conf.Lease.Enabled(),
	})
	if err != nil {
		return fmt.Errorf("failed to select outbox batch: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.process(ctx, rec)
	}
	return nil
}

func (p *Processor) process(ctx context.Context, rec *Record) {
	log := p.log.With(zap.String("record_id", rec.ID.Hex()), zap.String("event_type", rec.EventType))

	if p.conf.Lease.Enabled() {
		now := p.clock()
		claimed, err := p.store.Claim(ctx, rec.ID, p.owner, now, now.Add(p.conf.Lease.Duration))
		if err != nil {
			log.Error("failed to claim outbox record", zap.Error(err))
			return
		}
		if !claimed {
			log.Debug("outbox record claimed by another worker")
			return
		}
	}

	ctx, span := p.tracer.Start(ctx, "outbox.process", trace.WithAttributes(
		attribute.String("outbox.record_id", rec.ID.Hex()),
		attribute.String("outbox.event_type", rec.EventType),
		attribute.Int("outbox.retries", rec.Retries),
	))
	log = tracing.LoggerWithTrace(ctx, log)

	result, handleErr := p.dispatch(ctx, rec, log)
	result = p.apply(rec, result, handleErr)
	tracing.EndSpan(span, handleErr)

	if err := p.store.Update(ctx, rec); err != nil {
		log.Error("failed to update outbox record", zap.Error(err))
	}

	p.metrics.processed.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// dispatch returns resultSent, resultUnhandled or resultRetry.
func (p *Processor) dispatch(ctx context.Context, rec *Record, log *zap.Logger) (string, error) {
	handler, ok := p.registry[rec.EventType]
	if !ok {
		log.Warn("no outbox handler registered, marking record sent")
		return resultUnhandled, nil
	}

	if err := p.invoke(logger.With(ctx, log), handler, rec); err != nil {
		return resultRetry, err
	}
	return resultSent, nil
}

func (p *Processor) invoke(ctx context.Context, handler Handler, rec *Record) (err error) {
	if p.conf.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.conf.HandlerTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("outbox handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, rec)
}

// apply moves rec to its next state and returns resultFailed when the retry
// ceiling is crossed, result otherwise.
func (p *Processor) apply(rec *Record, result string, handleErr error) string {
	now := p.clock()
	rec.release()
	rec.UpdatedAt = now

	if handleErr == nil {
		rec.Status = StatusSent
		rec.Error = ""
		return result
	}

	rec.Retries++
	rec.Error = handleErr.Error()
	if retry.Exhausted(rec.Retries, p.conf.MaxRetries) {
		rec.Status = StatusFailed
		p.log.Error("outbox record failed permanently",
			zap.String("record_id", rec.ID.Hex()),
			zap.String("event_type", rec.EventType),
			zap.Int("retries", rec.Retries),
			zap.Error(handleErr))
		return resultFailed
	}

	rec.Status = StatusPending
	rec.AvailableAt = retry.NextAttempt(now, rec.Retries)
	p.log.Warn("outbox record failed, will retry",
		zap.String("record_id", rec.ID.Hex()),
		zap.String("event_type", rec.EventType),
		zap.Int("retries", rec.Retries),
		zap.Time("available_at", rec.AvailableAt),
		zap.Error(handleErr))
	return result
}
