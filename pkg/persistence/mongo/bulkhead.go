package mongo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Bulkhead limits concurrent access to MongoDB operations.
type Bulkhead struct {
	semaphore *semaphore.Weighted
	timeout   time.Duration
	log       *zap.Logger
}

// NewBulkhead creates a new bulkhead with the specified limit and acquire timeout.
func NewBulkhead(limit int, timeout time.Duration, log *zap.Logger) *Bulkhead {
	log.Info("bulkhead initialized",
		zap.Int("limit", limit),
		zap.Duration("timeout", timeout),
	)

	return &Bulkhead{
		semaphore: semaphore.NewWeighted(int64(limit)),
		timeout:   timeout,
		log:       log,
	}
}

// acquire takes a slot, waiting at most the configured timeout.
// The returned release func must be called exactly once.
func (b *Bulkhead) acquire(ctx context.Context) (func(), error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.semaphore.Acquire(timeoutCtx, 1); err != nil {
		b.log.Warn("bulkhead acquisition failed",
			zap.Duration("timeout", b.timeout),
			zap.Error(err),
		)
		return nil, fmt.Errorf("mongo bulkhead full: %w", err)
	}
	return func() { b.semaphore.Release(1) }, nil
}

// Execute runs fn within the bulkhead.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
