package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

const maxTxAttempts = 3

type sessionStarter interface {
	StartSession() (*mongodriver.Session, error)
}

type mongoTxManager struct {
	admin sessionStarter
	log   *zap.Logger
}

func newTxManager(admin Admin, log *zap.Logger) persistence.TxManager {
	return &mongoTxManager{
		admin: admin,
		log:   log,
	}
}

// isTransientError checks if the error carries the TransientTransactionError label.
func isTransientError(err error) bool {
	var serverErr mongodriver.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}

func (t *mongoTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	var lastErr error

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if attempt > 1 {
			t.log.Warn("retrying transaction", zap.Int("attempt", attempt))
		}

		session, err := t.admin.StartSession()
		if err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}

		result, err := session.WithTransaction(ctx, fn)
		session.EndSession(ctx)

		if err == nil {
			t.log.Debug("transaction committed", zap.Int("attempts", attempt))
			return result, nil
		}
		lastErr = err

		if !isTransientError(err) {
			break
		}
		t.log.Warn("transient transaction error",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxTxAttempts))
	}

	t.log.Error("transaction failed", zap.Error(lastErr))
	return nil, fmt.Errorf("transaction failed: %w", lastErr)
}
