//go:build integration

package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// startReplicaSet cannot use pkg/testutil/container: that package imports this one.
func startReplicaSet(t *testing.T) *mongo {
	t.Helper()
	ctx := context.Background()

	c, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(c) })

	uri, err := c.ConnectionString(ctx)
	require.NoError(t, err)

	m, err := newMongo(zap.NewNop(), Config{
		ConnectionString:    uri,
		Database:            "txtest",
		MaxPoolSize:         10,
		ConnectTimeout:      10 * time.Second,
		ServerSelectTimeout: 10 * time.Second,
		QueryTimeout:        5 * time.Second,
		ConnectRetries:      3,
	}, noop.NewTracerProvider())
	require.NoError(t, err)
	require.NoError(t, m.connect(ctx))
	t.Cleanup(func() { _ = m.disconnect(context.Background()) })

	// collections are created up front so the transactions only write documents
	for _, name := range []string{"movies", "outboxes"} {
		require.NoError(t, m.GetDatabase().CreateCollection(ctx, name))
	}
	return m
}

func TestTxManager_Integration(t *testing.T) {
	m := startReplicaSet(t)
	tx := newTxManager(m, zap.NewNop())
	ctx := context.Background()
	movies, outboxes := m.GetCollection("movies"), m.GetCollection("outboxes")

	t.Run("commit writes both collections", func(t *testing.T) {
		id := bson.NewObjectID()

		_, err := tx.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
			if _, err := movies.InsertOne(txCtx, bson.M{"_id": id, "title": "Dune"}); err != nil {
				return nil, err
			}
			return outboxes.InsertOne(txCtx, bson.M{"aggregateId": id.Hex(), "eventType": "movie_added"})
		})

		require.NoError(t, err)
		n, err := outboxes.CountDocuments(ctx, bson.M{"aggregateId": id.Hex()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("error rolls back both collections", func(t *testing.T) {
		id := bson.NewObjectID()
		boom := errors.New("boom")

		_, err := tx.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
			if _, err := movies.InsertOne(txCtx, bson.M{"_id": id, "title": "Arrival"}); err != nil {
				return nil, err
			}
			if _, err := outboxes.InsertOne(txCtx, bson.M{"aggregateId": id.Hex()}); err != nil {
				return nil, err
			}
			return nil, boom
		})

		require.ErrorIs(t, err, boom)
		for _, coll := range []Collection{movies, outboxes} {
			n, err := coll.CountDocuments(ctx, bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"aggregateId": id.Hex()}}})
			require.NoError(t, err)
			assert.Zero(t, n, coll.Name())
		}
	})
}
