package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "outboxes"

// DueQuery selects the next batch.
type DueQuery struct {
	Now   time.Time
	Limit int
	// Unclaimed additionally skips records under a live lease.
	Unclaimed bool
}

type Store interface {
	Insert(ctx context.Context, rec *Record) error

	// FindDue returns PENDING records with availableAt <= now, oldest first.
	FindDue(ctx context.Context, q DueQuery) ([]*Record, error)

	// Claim leases a due record to owner. It returns false when the record is
	// no longer due or another owner holds a live lease.
	Claim(ctx context.Context, id bson.ObjectID, owner string, now, until time.Time) (bool, error)

	// Update persists the mutable fields of rec.
	// Returns persistence.ErrEntityNotFound when the record is gone.
	Update(ctx context.Context, rec *Record) error
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
		"status":      StatusPending,
		"availableAt": bson.M{"$lte": now},
	}
}

func (s *store) Insert(ctx context.Context, rec *Record) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return nil
}

func (s *store) FindDue(ctx context.Context, q DueQuery) ([]*Record, error) {
	filter := dueFilter(q.Now)
	if q.Unclaimed {
		filter = lease.WithFree(filter, q.Now)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due outbox records: %w", err)
	}

	var records []*Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode outbox records: %w", err)
	}
	return records, nil
}

func (s *store) Claim(ctx context.Context, id bson.ObjectID, owner string, now, until time.Time) (bool, error) {
	filter := lease.WithFree(dueFilter(now), now)
	filter["_id"] = id

	res, err := s.coll.UpdateOne(ctx, filter, lease.ClaimUpdate(owner, until))
	if err != nil {
		return false, fmt.Errorf("failed to claim outbox record: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *store) Update(ctx context.Context, rec *Record) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": rec.ID}, updateDocument(rec))
	if err != nil {
		return fmt.Errorf("failed to update outbox record: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update outbox record %s: %w", rec.ID.Hex(), persistence.ErrEntityNotFound)
	}
	return nil
}

// updateDocument sets the mutable fields and unsets the empty optional ones,
// so a cleared error or a released lease leaves no field behind.
func updateDocument(rec *Record) bson.M {
	set := bson.M{
		"status":      rec.Status,
		"retries":     rec.Retries,
		"availableAt": rec.AvailableAt,
		"updatedAt":   rec.UpdatedAt,
	}
	unset := bson.M{}

	if rec.Error != "" {
		set["error"] = rec.Error
	} else {
		unset["error"] = ""
	}
	if rec.ClaimedBy != "" && rec.LeaseExpiresAt != nil {
		set[lease.FieldClaimedBy] = rec.ClaimedBy
		set[lease.FieldLeaseExpiresAt] = *rec.LeaseExpiresAt
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
