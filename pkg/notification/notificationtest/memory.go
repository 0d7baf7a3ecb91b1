// Package notificationtest provides an in-memory notification.Store for tests.
package notificationtest

import (
	"context"
	"sync"

	"github.com/Sokol111/streamflix-reliability/pkg/notification"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Store struct {
	mu            sync.Mutex
	notifications []notification.Notification
	// FailFor makes InsertMany and Insert skip these users and report an error.
	FailFor map[bson.ObjectID]error
	// BulkCalls counts InsertMany calls.
	BulkCalls int
}

var _ notification.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{FailFor: make(map[bson.ObjectID]error)}
}

func (s *Store) Insert(_ context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailFor[n.UserID]; err != nil {
		return err
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *Store) InsertMany(_ context.Context, ns []*notification.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BulkCalls++

	var firstErr error
	inserted := 0
	for _, n := range ns {
		if err := s.FailFor[n.UserID]; err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.notifications = append(s.notifications, *n)
		inserted++
	}
	return inserted, firstErr
}

// All returns every stored notification in insertion order.
func (s *Store) All() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Notification(nil), s.notifications...)
}

// For returns the notifications stored for userID.
func (s *Store) For(userID bson.ObjectID) []notification.Notification {
	var out []notification.Notification
	for _, n := range s.All() {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
