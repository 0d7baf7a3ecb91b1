package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/worker"
	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/Sokol111/streamflix-reliability/pkg/notification"
	"github.com/Sokol111/streamflix-reliability/pkg/notification/notificationtest"
	"github.com/Sokol111/streamflix-reliability/pkg/outbox"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"github.com/Sokol111/streamflix-reliability/pkg/user/usertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// outboxStore holds records in memory with the PENDING and availableAt rules.
type outboxStore struct {
	mu      sync.Mutex
	records map[bson.ObjectID]outbox.Record
}

func newOutboxStore(recs ...*outbox.Record) *outboxStore {
	s := &outboxStore{records: map[bson.ObjectID]outbox.Record{}}
	for _, r := range recs {
		s.records[r.ID] = *r
	}
	return s
}

func (s *outboxStore) Insert(_ context.Context, rec *outbox.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return nil
}

func (s *outboxStore) FindDue(_ context.Context, q outbox.DueQuery) ([]*outbox.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*outbox.Record
	for _, r := range s.records {
		if r.Status == outbox.StatusPending && !r.AvailableAt.After(q.Now) {
			rec := r
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (s *outboxStore) Claim(context.Context, bson.ObjectID, string, time.Time, time.Time) (bool, error) {
	return true, nil
}

func (s *outboxStore) Update(_ context.Context, rec *outbox.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return nil
}

func (s *outboxStore) get(id bson.ObjectID) outbox.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

type announceFixture struct {
	notifications *notificationtest.Store
	users         *usertest.Repository
	handler       outbox.NamedHandler
}

func newAnnounceFixture(t *testing.T, users ...*user.User) *announceFixture {
	t.Helper()
	f := &announceFixture{
		notifications: notificationtest.NewStore(),
		users:         usertest.NewRepository(users...),
	}
	fanOut, err := notification.NewFanOut(f.notifications, f.users, metricnoop.NewMeterProvider())
	require.NoError(t, err)
	f.handler = newMovieAddedHandler(fanOut)
	return f
}

func TestMovieAdded_OneBatchNotifiesEveryUser(t *testing.T) {
	admin := &user.User{Name: "Root", Role: user.RoleAdmin}
	users := []*user.User{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	f := newAnnounceFixture(t, append(users, admin)...)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &outbox.Record{
		ID:          bson.NewObjectID(),
		EventType:   EventMovieAdded,
		Payload:     bson.M{"movieId": "m1", "title": "Dune"},
		Status:      outbox.StatusPending,
		AvailableAt: now,
		CreatedAt:   now,
	}
	store := newOutboxStore(rec)

	registry, err := outbox.NewRegistry(f.handler)
	require.NoError(t, err)
	p, err := outbox.NewProcessor(store, registry, outbox.Config{
		PollConfig: worker.PollConfig{Interval: time.Second, MaxRetries: 5, BatchSize: 50},
		Lease:      lease.Config{Mode: lease.ModeNone},
	}, zap.NewNop(), outbox.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, p.RunBatch(context.Background()))

	assert.Equal(t, outbox.StatusSent, store.get(rec.ID).Status)
	all := f.notifications.All()
	require.Len(t, all, 3)
	for _, n := range all {
		assert.Equal(t, notification.TypeMovieUpdated, n.Type)
		assert.Equal(t, "New movie available", n.Title)
		assert.Equal(t, `We just added "Dune". Check it out!`, n.Message)
		assert.Equal(t, bson.M{"movieId": "m1", "mediaType": "movie"}, n.Metadata)
	}
	assert.Empty(t, f.notifications.For(admin.ID))
}

func TestMovieAddedHandler(t *testing.T) {
	t.Run("missing movieId or title is a no-op", func(t *testing.T) {
		f := newAnnounceFixture(t, &user.User{Name: "A"})

		for _, payload := range []bson.M{{"title": "Dune"}, {"movieId": "m1"}, {}} {
			err := f.handler.Handler.Handle(context.Background(), &outbox.Record{Payload: payload})
			require.NoError(t, err)
		}

		assert.Empty(t, f.notifications.All())
		assert.Zero(t, f.notifications.BulkCalls)
	})

	t.Run("tmdbId and mediaType are passed through", func(t *testing.T) {
		u := &user.User{Name: "A"}
		f := newAnnounceFixture(t, u)

		err := f.handler.Handler.Handle(context.Background(), &outbox.Record{Payload: bson.M{
			"movieId": "m2", "title": "Severance", "tmdbId": int32(95396), "mediaType": "tv",
		}})

		require.NoError(t, err)
		got := f.notifications.For(u.ID)
		require.Len(t, got, 1)
		assert.Equal(t, bson.M{"movieId": "m2", "tmdbId": int32(95396), "mediaType": "tv"}, got[0].Metadata)
	})

	t.Run("no users is not an error", func(t *testing.T) {
		f := newAnnounceFixture(t)

		err := f.handler.Handler.Handle(context.Background(), &outbox.Record{Payload: bson.M{"movieId": "m1", "title": "Dune"}})

		assert.NoError(t, err)
	})

	t.Run("fan-out failure is returned for retry", func(t *testing.T) {
		u := &user.User{Name: "A"}
		f := newAnnounceFixture(t, u)
		f.notifications.FailFor[u.ID] = assert.AnError

		err := f.handler.Handler.Handle(context.Background(), &outbox.Record{Payload: bson.M{"movieId": "m1", "title": "Dune"}})

		assert.ErrorIs(t, err, assert.AnError)
	})
}
