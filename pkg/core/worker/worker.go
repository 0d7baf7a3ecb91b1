package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/health"
	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker is a background component that can be started and stopped.
type Worker interface {
	Start()
	Stop()
}

// ticker abstracts time.Ticker so tests can drive ticks by hand.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker { return timeTicker{t: time.NewTicker(d)} }

// Option is a functional option for configuring a Periodic worker.
type Option func(*Periodic)

// WithReady makes the worker wait for all components to be ready before the first tick.
func WithReady(w health.ReadinessWaiter) Option {
	return func(p *Periodic) {
		p.readiness = w
	}
}

// WithOnStarted registers a callback invoked once the loop is running.
func WithOnStarted(fn func()) Option {
	return func(p *Periodic) {
		p.onStarted = fn
	}
}

func withTicker(factory func(time.Duration) ticker) Option {
	return func(p *Periodic) {
		p.newTicker = factory
	}
}

// Periodic runs a batch function on a fixed interval from a single goroutine,
// so two runs of the same worker never overlap. An error or panic inside a run
// is logged and the loop keeps going.
type Periodic struct {
	name      string
	interval  time.Duration
	runFunc   func(ctx context.Context) error
	log       *zap.Logger
	throttle  *logger.LogThrottler
	readiness health.ReadinessWaiter
	onStarted func()
	newTicker func(time.Duration) ticker

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPeriodic creates a stopped worker. Call Start to begin ticking.
func NewPeriodic(name string, interval time.Duration, run func(ctx context.Context) error, log *zap.Logger, opts ...Option) *Periodic {
	log = log.With(zap.String("worker", name))
	p := &Periodic{
		name:      name,
		interval:  interval,
		runFunc:   run,
		log:       log,
		throttle:  logger.NewLogThrottler(log, time.Minute),
		newTicker: newTimeTicker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the loop. Calling Start on a running worker is a no-op.
func (p *Periodic) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.log.Debug(p.name + " already started")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	p.log.Info("starting "+p.name, zap.Duration("interval", p.interval))
	go p.loop(ctx, p.done)
}

// Stop cancels the loop and waits for the in-flight run to return.
// Stop on a stopped worker is a no-op; a stopped worker can be started again.
func (p *Periodic) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	p.log.Info("stopping " + p.name)
	cancel()
	<-done
	p.log.Info(p.name + " stopped")
}

// Running reports whether the loop is active.
func (p *Periodic) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Periodic) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if p.readiness != nil {
		if err := p.readiness.WaitReady(ctx); err != nil {
			p.log.Info(p.name + " cancelled while waiting for readiness")
			return
		}
	}

	t := p.newTicker(p.interval)
	defer t.Stop()

	if p.onStarted != nil {
		p.onStarted()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			p.tick(ctx)
		}
	}
}

func (p *Periodic) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(p.name+" run panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	if err := p.runFunc(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.throttle.Error("run", p.name+" run failed", zap.Error(err))
	}
}

// Register binds a worker to the fx lifecycle so it starts and stops with the application.
func Register(lc fx.Lifecycle, w Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}

// Validate reports a misconfigured interval before a worker is built from it.
func Validate(name string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%s interval must be positive, got %s", name, interval)
	}
	return nil
}
