package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "github.com/Sokol111/streamflix-reliability/pkg/notification"

const (
	audienceUser      = "user"
	audienceAdmins    = "admins"
	audienceNonAdmins = "non_admins"
)

// Recipients resolves fan-out audiences.
type Recipients interface {
	FindIDsByRole(ctx context.Context, role user.Role) ([]bson.ObjectID, error)
	FindNonAdminIDs(ctx context.Context) ([]bson.ObjectID, error)
}

// FanOut writes notifications for one user or a whole audience.
type FanOut interface {
	NotifyUser(ctx context.Context, userID bson.ObjectID, msg Message) error
	NotifyAllAdmins(ctx context.Context, msg Message) (int, error)
	NotifyAllNonAdmins(ctx context.Context, msg Message) (int, error)
}

type fanOut struct {
	store      Store
	recipients Recipients
	clock      func() time.Time
	inserted   metric.Int64Counter
}

func NewFanOut(store Store, recipients Recipients, mp metric.MeterProvider) (FanOut, error) {
	inserted, err := mp.Meter(meterName).Int64Counter("notification.fanout.inserted",
		metric.WithDescription("Notifications written, by audience"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fan-out counter: %w", err)
	}
	return &fanOut{
		store:      store,
		recipients: recipients,
		clock:      func() time.Time { return time.Now().UTC() },
		inserted:   inserted,
	}, nil
}

func (f *fanOut) NotifyUser(ctx context.Context, userID bson.ObjectID, msg Message) error {
	if err := f.store.Insert(ctx, newNotification(userID, msg, f.clock())); err != nil {
		return err
	}
	f.record(ctx, audienceUser, 1)
	return nil
}

func (f *fanOut) NotifyAllAdmins(ctx context.Context, msg Message) (int, error) {
	ids, err := f.recipients.FindIDsByRole(ctx, user.RoleAdmin)
	if err != nil {
		return 0, fmt.Errorf("failed to find admins: %w", err)
	}
	return f.notifyAll(ctx, audienceAdmins, ids, msg)
}

func (f *fanOut) NotifyAllNonAdmins(ctx context.Context, msg Message) (int, error) {
	ids, err := f.recipients.FindNonAdminIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find non-admin users: %w", err)
	}
	return f.notifyAll(ctx, audienceNonAdmins, ids, msg)
}

func (f *fanOut) notifyAll(ctx context.Context, audience string, ids []bson.ObjectID, msg Message) (int, error) {
	if len(ids) == 0 {
		logger.Get(ctx).Debug("no recipients for notification", zap.String("audience", audience))
		return 0, nil
	}

	now := f.clock()
	ns := lo.Map(ids, func(id bson.ObjectID, _ int) *Notification {
		return newNotification(id, msg, now)
	})

	n, err := f.store.InsertMany(ctx, ns)
	f.record(ctx, audience, n)
	if err != nil {
		return n, err
	}

	logger.Get(ctx).Info("notifications sent",
		zap.String("audience", audience),
		zap.String("type", string(msg.Type)),
		zap.Int("count", n))
	return n, nil
}

func (f *fanOut) record(ctx context.Context, audience string, n int) {
	if n > 0 {
		f.inserted.Add(ctx, int64(n), metric.WithAttributes(attribute.String("audience", audience)))
	}
}
