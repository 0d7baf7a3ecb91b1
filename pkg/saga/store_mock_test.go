package saga

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memStore is an in-memory Store with the same selection rules as the mongo store.
type memStore struct {
	mu        sync.Mutex
	sagas     map[bson.ObjectID]*Saga
	findErr   error
	claimErr  error
	updateErr func(s *Saga) error
	history   []Saga
}

func newMemStore(sagas ...*Saga) *memStore {
	m := &memStore{sagas: make(map[bson.ObjectID]*Saga)}
	for _, s := range sagas {
		m.sagas[s.ID] = clone(s)
	}
	return m
}

func clone(s *Saga) *Saga {
	c := *s
	c.Steps = append([]Step(nil), s.Steps...)
	return &c
}

func (m *memStore) due(s *Saga, now time.Time) bool {
	return lo.Contains([]Status{StatusPending, StatusRunning}, s.Status) && !s.AvailableAt.After(now)
}

func (m *memStore) Insert(_ context.Context, s *Saga) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sagas[s.ID] = clone(s)
	return nil
}

func (m *memStore) FindDue(_ context.Context, q DueQuery) ([]*Saga, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []*Saga
	for _, s := range m.sagas {
		if !m.due(s, q.Now) {
			continue
		}
		if q.Unclaimed && !lease.Free(s.LeaseExpiresAt, q.Now) {
			continue
		}
		out = append(out, clone(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) Claim(_ context.Context, id bson.ObjectID, owner string, now, until time.Time) (*Saga, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	s, ok := m.sagas[id]
	if !ok || !m.due(s, now) || !lease.Free(s.LeaseExpiresAt, now) {
		return nil, nil
	}
	s.ClaimedBy = owner
	s.LeaseExpiresAt = &until
	return clone(s), nil
}

func (m *memStore) Update(_ context.Context, s *Saga) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		if err := m.updateErr(s); err != nil {
			return err
		}
	}
	if _, ok := m.sagas[s.ID]; !ok {
		return errors.New("not found")
	}
	m.sagas[s.ID] = clone(s)
	m.history = append(m.history, *clone(s))
	return nil
}

func (m *memStore) FindByID(_ context.Context, id bson.ObjectID) (*Saga, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sagas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return clone(s), nil
}

func (m *memStore) get(id bson.ObjectID) *Saga {
	s, _ := m.FindByID(context.Background(), id)
	return s
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
