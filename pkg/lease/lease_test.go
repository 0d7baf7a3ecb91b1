package lease

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeNone, "none": ModeNone, "lease": ModeLease} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("optimistic")
	assert.Error(t, err)
}

func TestFree(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.True(t, Free(nil, now))
	assert.True(t, Free(&past, now))
	assert.True(t, Free(&now, now))
	assert.False(t, Free(&future, now))
}

func TestNewOwnerID(t *testing.T) {
	a, b := NewOwnerID(), NewOwnerID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestWithFree(t *testing.T) {
	now := time.Now()
	f := WithFree(bson.M{"status": "PENDING"}, now)

	and, ok := f["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, and, 2)
	assert.Equal(t, bson.M{"status": "PENDING"}, and[0])
	assert.Equal(t, FreeFilter(now), and[1])
}

func TestClaimUpdate(t *testing.T) {
	until := time.Now().Add(time.Minute)
	assert.Equal(t, bson.M{"$set": bson.M{"claimedBy": "w1", "leaseExpiresAt": until}}, ClaimUpdate("w1", until))
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults to none", func(t *testing.T) {
		cfg, err := LoadConfig(viper.New(), "outbox")
		require.NoError(t, err)
		assert.Equal(t, ModeNone, cfg.Mode)
		assert.False(t, cfg.Enabled())
	})

	t.Run("lease mode", func(t *testing.T) {
		v := viper.New()
		v.Set("saga.claim-mode", "lease")
		v.Set("saga.lease-duration", "30s")

		cfg, err := LoadConfig(v, "saga")

		require.NoError(t, err)
		assert.True(t, cfg.Enabled())
		assert.Equal(t, 30*time.Second, cfg.Duration)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		v := viper.New()
		v.Set("saga.claim-mode", "pessimistic")
		_, err := LoadConfig(v, "saga")
		assert.Error(t, err)
	})

	t.Run("rejects zero lease duration", func(t *testing.T) {
		v := viper.New()
		v.Set("saga.claim-mode", "lease")
		v.Set("saga.lease-duration", 0)
		_, err := LoadConfig(v, "saga")
		assert.Error(t, err)
	})
}
