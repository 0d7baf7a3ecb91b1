package user

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "users"

type Repository interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindIDsByRole(ctx context.Context, role Role) ([]bson.ObjectID, error)
	FindNonAdminIDs(ctx context.Context) ([]bson.ObjectID, error)
	UpdateSubscription(ctx context.Context, id bson.ObjectID, upd SubscriptionUpdate) error
	Insert(ctx context.Context, u *User) error
}

type repository struct {
	coll  mongo.Collection
	clock func() time.Time
}

func newRepository(m mongo.Mongo) Repository {
	return &repository{
		coll:  m.GetCollection(collectionName),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (r *repository) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var u User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", mongo.TranslateError(err))
	}
	return &u, nil
}

func (r *repository) FindIDsByRole(ctx context.Context, role Role) ([]bson.ObjectID, error) {
	return r.findIDs(ctx, bson.M{"role": role})
}

func (r *repository) FindNonAdminIDs(ctx context.Context) ([]bson.ObjectID, error) {
	return r.findIDs(ctx, bson.M{"role": bson.M{"$ne": RoleAdmin}})
}

type idOnly struct {
	ID bson.ObjectID `bson:"_id"`
}

func (r *repository) findIDs(ctx context.Context, filter bson.M) ([]bson.ObjectID, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	var docs []idOnly
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return lo.Map(docs, func(d idOnly, _ int) bson.ObjectID { return d.ID }), nil
}

func (r *repository) UpdateSubscription(ctx context.Context, id bson.ObjectID, upd SubscriptionUpdate) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": upd.setDocument(r.clock())})
	if err != nil {
		return fmt.Errorf("failed to update user subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return persistence.ErrEntityNotFound
	}
	return nil
}

func (r *repository) Insert(ctx context.Context, u *User) error {
	now := r.clock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
