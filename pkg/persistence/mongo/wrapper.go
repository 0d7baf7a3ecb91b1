package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionWrapper decorates a Collection with a per-operation timeout and an optional bulkhead.
type CollectionWrapper struct {
	coll     Collection
	timeout  time.Duration
	bulkhead *Bulkhead
}

// WrapperOption configures a CollectionWrapper.
type WrapperOption func(*CollectionWrapper)

// WithTimeout bounds each operation. Zero disables the timeout.
func WithTimeout(d time.Duration) WrapperOption {
	return func(w *CollectionWrapper) {
		w.timeout = d
	}
}

// WithBulkhead limits concurrent operations across every collection sharing b.
func WithBulkhead(b *Bulkhead) WrapperOption {
	return func(w *CollectionWrapper) {
		w.bulkhead = b
	}
}

func NewCollectionWrapper(coll Collection, opts ...WrapperOption) (*CollectionWrapper, error) {
	if coll == nil {
		return nil, errors.New("collection is required")
	}
	w := &CollectionWrapper{coll: coll}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *CollectionWrapper) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, w.timeout)
}

func (w *CollectionWrapper) enter(ctx context.Context) (func(), error) {
	if w.bulkhead == nil {
		return func() {}, nil
	}
	return w.bulkhead.acquire(ctx)
}

func errSingleResult(err error) *mongodriver.SingleResult {
	return mongodriver.NewSingleResultFromDocument(bson.D{}, err, nil)
}

func (w *CollectionWrapper) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult {
	release, err := w.enter(ctx)
	if err != nil {
		return errSingleResult(err)
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.FindOne(timeoutCtx, filter, opts...)
}

// Find does not apply the query timeout: the returned cursor outlives this call
// and is iterated with the caller's context.
func (w *CollectionWrapper) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
	release, err := w.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return w.coll.Find(ctx, filter, opts...)
}

func (w *CollectionWrapper) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error) {
	release, err := w.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.InsertOne(timeoutCtx, document, opts...)
}

func (w *CollectionWrapper) InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongodriver.InsertManyResult, error) {
	release, err := w.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.InsertMany(timeoutCtx, documents, opts...)
}

func (w *CollectionWrapper) UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error) {
	release, err := w.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.UpdateOne(timeoutCtx, filter, update, opts...)
}

func (w *CollectionWrapper) UpdateMany(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongodriver.UpdateResult, error) {
	release, err := w.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.UpdateMany(timeoutCtx, filter, update, opts...)
}

func (w *CollectionWrapper) FindOneAndUpdate(ctx context.Context, filter any, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongodriver.SingleResult {
	release, err := w.enter(ctx)
	if err != nil {
		return errSingleResult(err)
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.FindOneAndUpdate(timeoutCtx, filter, update, opts...)
}

func (w *CollectionWrapper) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	release, err := w.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.CountDocuments(timeoutCtx, filter, opts...)
}

func (w *CollectionWrapper) Name() string {
	return w.coll.Name()
}
