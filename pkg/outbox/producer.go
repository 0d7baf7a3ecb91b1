package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// Producer records side effects for later delivery.
type Producer interface {
	// Enqueue inserts a PENDING record available immediately. A transaction
	// context from persistence.TxManager makes the insert part of that transaction.
	Enqueue(ctx context.Context, evt Event) (*Record, error)
}

type producer struct {
	store Store
	clock func() time.Time
}

func newProducer(store Store) Producer {
	return &producer{
		store: store,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (p *producer) Enqueue(ctx context.Context, evt Event) (*Record, error) {
	if evt.EventType == "" {
		return nil, fmt.Errorf("outbox event type is required")
	}

	now := p.clock()
	payload := evt.Payload
	if payload == nil {
		payload = bson.M{}
	}
	rec := &Record{
		ID:            bson.NewObjectID(),
		AggregateType: evt.AggregateType,
		AggregateID:   evt.AggregateID,
		EventType:     evt.EventType,
		Payload:       payload,
		Status:        StatusPending,
		AvailableAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := p.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	logger.Get(ctx).Debug("outbox record enqueued",
		zap.String("record_id", rec.ID.Hex()),
		zap.String("event_type", rec.EventType),
		zap.String("aggregate_id", rec.AggregateID))
	return rec, nil
}
