package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestUpdateDocument(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("clears error and lease", func(t *testing.T) {
		rec := &Record{Status: StatusSent, Retries: 1, AvailableAt: now, UpdatedAt: now}

		doc := updateDocument(rec)

		assert.Equal(t, bson.M{
			"status":      StatusSent,
			"retries":     1,
			"availableAt": now,
			"updatedAt":   now,
		}, doc["$set"])
		assert.Equal(t, bson.M{"error": "", "claimedBy": "", "leaseExpiresAt": ""}, doc["$unset"])
	})

	t.Run("keeps error and live lease", func(t *testing.T) {
		until := now.Add(time.Minute)
		rec := &Record{Status: StatusPending, Error: "boom", ClaimedBy: "w1", LeaseExpiresAt: &until}

		doc := updateDocument(rec)

		set := doc["$set"].(bson.M)
		assert.Equal(t, "boom", set["error"])
		assert.Equal(t, "w1", set["claimedBy"])
		assert.Equal(t, until, set["leaseExpiresAt"])
		assert.NotContains(t, doc, "$unset")
	})
}

func TestDueFilter(t *testing.T) {
	now := time.Now()
	assert.Equal(t, bson.M{
		"status":      StatusPending,
		"availableAt": bson.M{"$lte": now},
	}, dueFilter(now))
}
