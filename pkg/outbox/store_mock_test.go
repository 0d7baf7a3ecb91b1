package outbox

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memStore is an in-memory Store with the same selection rules as the mongo store.
type memStore struct {
	mu        sync.Mutex
	records   map[bson.ObjectID]*Record
	findErr   error
	updateErr error
	claimErr  error
	findCalls int
	updates   []Record
}

func newMemStore(records ...*Record) *memStore {
	s := &memStore{records: make(map[bson.ObjectID]*Record)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *memStore) Insert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *rec
	s.records[rec.ID] = &c
	return nil
}

func (s *memStore) due(r *Record, now time.Time) bool {
	return r.Status == StatusPending && !r.AvailableAt.After(now)
}

func (s *memStore) FindDue(_ context.Context, q DueQuery) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}

	var out []*Record
	for _, r := range s.records {
		if !s.due(r, q.Now) {
			continue
		}
		if q.Unclaimed && !lease.Free(r.LeaseExpiresAt, q.Now) {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memStore) Claim(_ context.Context, id bson.ObjectID, owner string, now, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return false, s.claimErr
	}
	r, ok := s.records[id]
	if !ok || !s.due(r, now) || !lease.Free(r.LeaseExpiresAt, now) {
		return false, nil
	}
	r.ClaimedBy = owner
	r.LeaseExpiresAt = &until
	return true, nil
}

func (s *memStore) Update(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	r, ok := s.records[rec.ID]
	if !ok {
		return errors.New("not found")
	}
	r.Status = rec.Status
	r.Retries = rec.Retries
	r.AvailableAt = rec.AvailableAt
	r.Error = rec.Error
	r.ClaimedBy = rec.ClaimedBy
	r.LeaseExpiresAt = rec.LeaseExpiresAt
	r.UpdatedAt = rec.UpdatedAt
	s.updates = append(s.updates, *r)
	return nil
}

func (s *memStore) get(id bson.ObjectID) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[id]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
