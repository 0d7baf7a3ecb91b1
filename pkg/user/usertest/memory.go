// Package usertest provides an in-memory user.Repository for tests.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Repository struct {
	mu    sync.Mutex
	users map[bson.ObjectID]user.User
	// FindErr, when set, fails every lookup.
	FindErr error
}

var _ user.Repository = (*Repository)(nil)

func NewRepository(users ...*user.User) *Repository {
	r := &Repository{users: make(map[bson.ObjectID]user.User)}
	for _, u := range users {
		_ = r.Insert(context.Background(), u)
	}
	return r
}

func (r *Repository) FindByID(_ context.Context, id bson.ObjectID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, persistence.ErrEntityNotFound
	}
	return &u, nil
}

func (r *Repository) FindIDsByRole(_ context.Context, role user.Role) ([]bson.ObjectID, error) {
	return r.ids(func(u user.User) bool { return u.Role == role })
}

func (r *Repository) FindNonAdminIDs(_ context.Context) ([]bson.ObjectID, error) {
	return r.ids(func(u user.User) bool { return u.Role != user.RoleAdmin })
}

func (r *Repository) ids(match func(user.User) bool) ([]bson.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	var users []user.User
	for _, u := range r.users {
		if match(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })

	ids := make([]bson.ObjectID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (r *Repository) UpdateSubscription(_ context.Context, id bson.ObjectID, upd user.SubscriptionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return persistence.ErrEntityNotFound
	}
	if upd.Plan != nil {
		u.SubscriptionPlan = *upd.Plan
	}
	if upd.Status != nil {
		u.SubscriptionStatus = *upd.Status
	}
	if upd.Payment != nil {
		u.PaymentStatus = *upd.Payment
	}
	if upd.PaymentDate != nil {
		u.PaymentDate = upd.PaymentDate
	}
	if upd.ActivatedAt != nil {
		u.ActivatedAt = upd.ActivatedAt
	}
	if upd.ExpiresAt != nil {
		u.ExpiresAt = upd.ExpiresAt
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *Repository) Insert(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	if u.CreatedAt.IsZero() {
		// keeps insertion order for FindIDs results
		u.CreatedAt = time.Unix(int64(len(r.users)), 0).UTC()
	}
	r.users[u.ID] = *u
	return nil
}

// Get returns a copy of the stored user, or nil.
func (r *Repository) Get(id bson.ObjectID) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	return &u
}
