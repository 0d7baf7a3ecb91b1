package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"github.com/samber/lo"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "notifications"

type Store interface {
	Insert(ctx context.Context, n *Notification) error

	// InsertMany writes all notifications in one unordered bulk insert and
	// returns how many were stored. On a partial failure the stored ones stay.
	InsertMany(ctx context.Context, ns []*Notification) (int, error)
}

type store struct {
	coll mongo.Collection
}

func newStore(m mongo.Mongo) Store {
	return &store{
		coll: m.GetCollection(collectionName),
	}
}

func (s *store) Insert(ctx context.Context, n *Notification) error {
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *store) InsertMany(ctx context.Context, ns []*Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}

	docs := lo.Map(ns, func(n *Notification, _ int) any { return n })
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(ns), nil
	}

	var bulkErr mongodriver.BulkWriteException
	if errors.As(err, &bulkErr) {
		return len(ns) - len(bulkErr.WriteErrors), fmt.Errorf("failed to insert %d of %d notifications: %w",
			len(bulkErr.WriteErrors), len(ns), err)
	}
	return 0, fmt.Errorf("failed to insert notifications: %w", err)
}
