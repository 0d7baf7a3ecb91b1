package migrations

import (
	"errors"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDatabaseURL(t *testing.T) {
	t.Run("adds driver params and keeps existing ones", func(t *testing.T) {
		raw, err := databaseURL("mongodb://localhost:27017/streamflix?replicaSet=rs0", "outbox_migrations", 5)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "/streamflix", u.Path)
		assert.Equal(t, "rs0", q.Get("replicaSet"))
		assert.Equal(t, "outbox_migrations", q.Get("x-migrations-collection"))
		assert.Equal(t, "true", q.Get("x-advisory-locking"))
		assert.Equal(t, "300", q.Get("x-advisory-lock-timeout"))
	})

	t.Run("rejects malformed uri", func(t *testing.T) {
		_, err := databaseURL("mongodb://%zz", "c", 1)
		assert.Error(t, err)
	})
}

func TestNewMigrator(t *testing.T) {
	_, err := newMigrator("", zap.NewNop(), 5)
	assert.Error(t, err)
}

func TestMigrator_InstanceValidation(t *testing.T) {
	m, err := newMigrator("mongodb://localhost:27017/db", zap.NewNop(), 5)
	require.NoError(t, err)

	t.Run("requires collection", func(t *testing.T) {
		err := m.Up(Source{Name: "x", FS: fstest.MapFS{}})
		assert.ErrorContains(t, err, "collection name is required")
	})

	t.Run("requires filesystem", func(t *testing.T) {
		err := m.Up(Source{Name: "x", Collection: "c"})
		assert.ErrorContains(t, err, "filesystem is required")
	})
}

type recordingMigrator struct {
	applied []string
	failOn  string
}

func (r *recordingMigrator) Up(src Source) error {
	if src.Name == r.failOn {
		return errors.New("boom")
	}
	r.applied = append(r.applied, src.Name)
	return nil
}

func (r *recordingMigrator) Down(Source) error { return nil }
func (r *recordingMigrator) Version(Source) (uint, bool, error) { return 0, false, nil }

func TestUpAll(t *testing.T) {
	sources := []Source{{Name: "outbox"}, {Name: "saga"}, {Name: "notification"}}

	t.Run("applies in order", func(t *testing.T) {
		m := &recordingMigrator{}
		require.NoError(t, UpAll(m, sources))
		assert.Equal(t, []string{"outbox", "saga", "notification"}, m.applied)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		m := &recordingMigrator{failOn: "saga"}
		err := UpAll(m, sources)
		assert.ErrorContains(t, err, "boom")
		assert.Equal(t, []string{"outbox"}, m.applied)
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := newConfig(viper.New())
		require.NoError(t, err)
		assert.True(t, c.AutoMigrate)
		assert.Equal(t, 5, c.LockingTimeout)
	})

	t.Run("rejects non-positive timeout", func(t *testing.T) {
		v := viper.New()
		v.Set("mongo.migrations.locking-timeout", 0)
		_, err := newConfig(v)
		assert.Error(t, err)
	})
}
