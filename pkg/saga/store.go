package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "sagas"

// DueQuery selects the next batch.
type DueQuery struct {
	Now       time.Time
	Limit     int
	Unclaimed bool
}

type Store interface {
	Insert(ctx context.Context, s *Saga) error

	// FindDue returns PENDING and RUNNING sagas with availableAt <= now, oldest first.
	FindDue(ctx context.Context, q DueQuery) ([]*Saga, error)

	// Claim leases a due saga to owner and returns its current state.
	// A nil saga means it is no longer due or is leased elsewhere.
	Claim(ctx context.Context, id bson.ObjectID, owner string, now, until time.Time) (*Saga, error)

	// Update persists status, steps, retry state and lease fields of s.
	Update(ctx context.Context, s *Saga) error

	FindByID(ctx context.Context, id bson.ObjectID) (*Saga, error)
}

type store struct {
	coll mongo.Collection
}

func newStore(m mongo.Mongo) Store {
	return &store{
		coll: m.GetCollection(collectionName),
	}
}

func dueFilter(now time.Time) bson.M {
	return bson.M{
		"status":      bson.M{"$in": bson.A{StatusPending, StatusRunning}},
		"availableAt": bson.M{"$lte": now},
	}
}

func (s *store) Insert(ctx context.Context, saga *Saga) error {
	if _, err := s.coll.InsertOne(ctx, saga); err != nil {
		return fmt.Errorf("failed to insert saga: %w", err)
	}
	return nil
}

func (s *store) FindDue(ctx context.Context, q DueQuery) ([]*Saga, error) {
	filter := dueFilter(q.Now)
	if q.Unclaimed {
		filter = lease.WithFree(filter, q.Now)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due sagas: %w", err)
	}

	var sagas []*Saga
	if err := cursor.All(ctx, &sagas); err != nil {
		return nil, fmt.Errorf("failed to decode sagas: %w", err)
	}
	return sagas, nil
}

// Claim returns the document after the update: the batch snapshot may be
// stale once another worker has advanced the saga.
func (s *store) Claim(ctx context.Context, id bson.ObjectID, owner string, now, until time.Time) (*Saga, error) {
	filter := lease.WithFree(dueFilter(now), now)
	filter["_id"] = id

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var saga Saga
	err := s.coll.FindOneAndUpdate(ctx, filter, lease.ClaimUpdate(owner, until), opts).Decode(&saga)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim saga: %w", err)
	}
	return &saga, nil
}

func (s *store) Update(ctx context.Context, saga *Saga) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": saga.ID}, updateDocument(saga))
	if err != nil {
		return fmt.Errorf("failed to update saga: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update saga %s: %w", saga.ID.Hex(), persistence.ErrEntityNotFound)
	}
	return nil
}

func (s *store) FindByID(ctx context.Context, id bson.ObjectID) (*Saga, error) {
	var saga Saga
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&saga); err != nil {
		return nil, fmt.Errorf("failed to find saga: %w", mongo.TranslateError(err))
	}
	return &saga, nil
}

func updateDocument(saga *Saga) bson.M {
	set := bson.M{
		"status":      saga.Status,
		"steps":       saga.Steps,
		"retryCount":  saga.RetryCount,
		"availableAt": saga.AvailableAt,
		"updatedAt":   saga.UpdatedAt,
	}
	unset := bson.M{}

	if saga.LastError != "" {
		set["lastError"] = saga.LastError
	} else {
		unset["lastError"] = ""
	}
	if saga.ClaimedBy != "" && saga.LeaseExpiresAt != nil {
		set[lease.FieldClaimedBy] = saga.ClaimedBy
		set[lease.FieldLeaseExpiresAt] = *saga.LeaseExpiresAt
	} else {
		unset[lease.FieldClaimedBy] = ""
		unset[lease.FieldLeaseExpiresAt] = ""
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}
