package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "movies"

type Repository interface {
	// Upsert updates the movie matching the input identity or inserts a new one.
	// The bool reports whether the movie was inserted.
	Upsert(ctx context.Context, in MovieInput) (*Movie, bool, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Movie, error)
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

func (r *repository) Upsert(ctx context.Context, in MovieInput) (*Movie, bool, error) {
	now := r.clock()

	var movie Movie
	err := r.coll.FindOneAndUpdate(ctx, in.identity(), bson.M{"$set": in.setDocument(now)},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&movie)
	if err == nil {
		return &movie, false, nil
	}
	if !errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to update movie: %w", err)
	}

	created := in.newMovie(now)
	if _, err := r.coll.InsertOne(ctx, created); err != nil {
		return nil, false, fmt.Errorf("failed to insert movie: %w", err)
	}
	return created, true, nil
}

func (r *repository) FindByID(ctx context.Context, id bson.ObjectID) (*Movie, error) {
	var movie Movie
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&movie); err != nil {
		return nil, fmt.Errorf("failed to find movie: %w", mongo.TranslateError(err))
	}
	return &movie, nil
}
