package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/Sokol111/streamflix-reliability/pkg/core/worker"
	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/Sokol111/streamflix-reliability/pkg/observability/tracing"
	"github.com/Sokol111/streamflix-reliability/pkg/retry"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const tracerName = "github.com/Sokol111/streamflix-reliability/pkg/saga"

// Processor advances due sagas by one step per cycle.
//
// A FAILED step is retried on the next due cycle; the saga only stops at
// COMPLETED or when retryCount exceeds MaxRetries.
// With claim mode none run a single live instance.
type Processor struct {
	store    Store
	steps    StepRegistry
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

func WithClock(clock func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.clock = clock
	}
}

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

func WithWorkerOptions(opts ...worker.Option) ProcessorOption {
	return func(p *Processor) {
		p.workerOp = append(p.workerOp, opts...)
	}
}

func NewProcessor(store Store, steps StepRegistry, conf Config, log *zap.Logger, opts ...ProcessorOption) (*Processor, error) {
	log = log.With(zap.String("component", "saga"))
	p := &Processor{
		store:  store,
		steps:  steps,
		conf:   conf,
		owner:  lease.NewOwnerID(),
		clock:  func() time.Time { return time.Now().UTC() },
		log:    log,
		tracer: tracenoop.NewTracerProvider().Tracer(tracerName),
		meter:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(p)
	}

	m, err := newProcessorMetrics(p.meter)
	if err != nil {
		return nil, err
	}
	p.metrics = m
	p.worker = worker.NewPeriodic("saga processor", conf.Interval, p.RunBatch, log, p.workerOp...)
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

// RunBatch advances each due saga by at most one step, sequentially and oldest first.
func (p *Processor) RunBatch(ctx context.Context) error {
	started := time.Now()
	defer func() {
		p.metrics.batchDuration.Record(ctx, time.Since(started).Seconds(),
			metric.WithAttributes(attribute.String("processor", "saga")))
	}()

	sagas, err := p.store.FindDue(ctx, DueQuery{
		Now:       p.clock(),
		Limit:     p.conf.BatchSize,
		Unclaimed: p.conf.Lease.Enabled(),
	})
	if err != nil {
		return fmt.Errorf("failed to select saga batch: %w", err)
	}

	for _, s := range sagas {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.advance(ctx, s)
	}
	return nil
}

func nextStep(s *Saga) int {
	_, idx, found := lo.FindIndexOf(s.Steps, func(st Step) bool {
		return st.Status != StepDone
	})
	if !found {
		return -1
	}
	return idx
}

func (p *Processor) advance(ctx context.Context, s *Saga) {
	log := p.log.With(zap.String("saga_id", s.ID.Hex()), zap.String("saga_type", s.SagaType))

	if p.conf.Lease.Enabled() {
		now := p.clock()
		claimed, err := p.store.Claim(ctx, s.ID, p.owner, now, now.Add(p.conf.Lease.Duration))
		if err != nil {
			log.Error("failed to claim saga", zap.Error(err))
			return
		}
		if claimed == nil {
			log.Debug("saga claimed by another worker")
			return
		}
		s = claimed
	}

	idx := nextStep(s)
	if idx < 0 {
		p.complete(ctx, s, log)
		return
	}

	step := &s.Steps[idx]
	log = log.With(zap.String("step", step.Name))

	s.Status = StatusRunning
	s.UpdatedAt = p.clock()
	if err := p.store.Update(ctx, s); err != nil {
		log.Error("failed to mark saga running", zap.Error(err))
		return
	}

	ctx, span := p.tracer.Start(ctx, "saga.step", trace.WithAttributes(
		attribute.String("saga.id", s.ID.Hex()),
		attribute.String("saga.type", s.SagaType),
		attribute.String("saga.step", step.Name),
		attribute.Int("saga.retry_count", s.RetryCount),
	))
	log = tracing.LoggerWithTrace(ctx, log)

	execErr := p.execute(logger.With(ctx, log), step.Name, s.Context)
	result := p.apply(s, step, execErr, log)
	tracing.EndSpan(span, execErr)

	if err := p.store.Update(ctx, s); err != nil {
		log.Error("failed to update saga", zap.Error(err))
	}
	p.metrics.executed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("step", step.Name),
	))
}

func (p *Processor) complete(ctx context.Context, s *Saga, log *zap.Logger) {
	s.Status = StatusCompleted
	s.LastError = ""
	s.UpdatedAt = p.clock()
	s.release()

	if err := p.store.Update(ctx, s); err != nil {
		log.Error("failed to complete saga", zap.Error(err))
		return
	}
	p.metrics.executed.Add(ctx, 1, metric.WithAttributes(attribute.String("result", resultCompleted)))
	log.Info("saga completed")
}

func (p *Processor) execute(ctx context.Context, name string, sagaCtx Context) (err error) {
	handler, ok := p.steps[name]
	if !ok {
		return &UnknownStepError{Name: name}
	}

	if p.conf.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.conf.HandlerTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("saga step panicked: %v", r)
		}
	}()
	return handler.Execute(ctx, sagaCtx)
}

func (p *Processor) apply(s *Saga, step *Step, execErr error, log *zap.Logger) string {
	now := p.clock()
	step.UpdatedAt = &now
	s.UpdatedAt = now
	s.release()

	if execErr == nil {
		step.Status = StepDone
		step.Error = ""
		s.LastError = ""
		log.Info("saga step done")
		return resultDone
	}

	step.Status = StepFailed
	step.Error = execErr.Error()
	s.LastError = execErr.Error()
	s.RetryCount++

	if retry.Exhausted(s.RetryCount, p.conf.MaxRetries) {
		s.Status = StatusFailed
		log.Error("saga failed permanently", zap.Int("retry_count", s.RetryCount), zap.Error(execErr))
		return resultFailed
	}

	s.Status = StatusPending
	s.AvailableAt = retry.NextAttempt(now, s.RetryCount)
	log.Warn("saga step failed, will retry",
		zap.Int("retry_count", s.RetryCount),
		zap.Time("available_at", s.AvailableAt),
		zap.Error(execErr))
	return resultRetry
}
