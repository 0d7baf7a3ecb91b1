//go:build integration

package notification

import (
	"context"
	"testing"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/testutil/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestStore_InsertMany(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := Message{Type: TypeMovieUpdated, Title: "t", Message: "m"}

	t.Run("inserts every notification", func(t *testing.T) {
		db := container.SharedMongo(t).NewDatabase(t)
		s := newStore(db)
		ns := []*Notification{
			newNotification(bson.NewObjectID(), msg, now),
			newNotification(bson.NewObjectID(), msg, now),
			newNotification(bson.NewObjectID(), msg, now),
		}

		n, err := s.InsertMany(ctx, ns)

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		count, err := db.GetCollection(collectionName).CountDocuments(ctx, bson.M{"read": false})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("partial failure keeps the other documents", func(t *testing.T) {
		db := container.SharedMongo(t).NewDatabase(t)
		s := newStore(db)
		dup := newNotification(bson.NewObjectID(), msg, now)
		require.NoError(t, s.Insert(ctx, dup))

		n, err := s.InsertMany(ctx, []*Notification{
			newNotification(bson.NewObjectID(), msg, now),
			dup,
			newNotification(bson.NewObjectID(), msg, now),
		})

		require.Error(t, err)
		assert.Equal(t, 2, n)
		count, err := db.GetCollection(collectionName).CountDocuments(ctx, bson.M{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("empty input", func(t *testing.T) {
		n, err := newStore(container.SharedMongo(t).NewDatabase(t)).InsertMany(ctx, nil)

		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
