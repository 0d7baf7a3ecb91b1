package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// ErrNoSteps is returned when a saga is created without steps.
var ErrNoSteps = errors.New("saga requires at least one step")

// Producer starts sagas.
type Producer interface {
	// Create persists a PENDING saga whose steps are all PENDING.
	Create(ctx context.Context, sagaType string, steps []string, sagaCtx Context) (*Saga, error)
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

func (p *producer) Create(ctx context.Context, sagaType string, steps []string, sagaCtx Context) (*Saga, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	if sagaType == "" {
		return nil, fmt.Errorf("saga type is required")
	}
	if sagaCtx == nil {
		sagaCtx = Context{}
	}

	now := p.clock()
	s := &Saga{
		ID:       bson.NewObjectID(),
		SagaType: sagaType,
		Status:   StatusPending,
		Steps: lo.Map(steps, func(name string, _ int) Step {
			return Step{Name: name, Status: StepPending}
		}),
		Context:     sagaCtx,
		AvailableAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := p.store.Insert(ctx, s); err != nil {
		return nil, err
	}

	logger.Get(ctx).Info("saga created",
		zap.String("saga_id", s.ID.Hex()),
		zap.String("saga_type", sagaType),
		zap.Strings("steps", steps))
	return s, nil
}
