package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/Sokol111/streamflix-reliability/pkg/notification"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/saga"
	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

type Service interface {
	// RequestActivation starts a subscription_activation saga for the caller.
	RequestActivation(ctx context.Context, planID string) (*saga.Saga, error)
	// Review applies an admin decision to a user's subscription.
	Review(ctx context.Context, userID bson.ObjectID, action Action) (*user.User, error)
}

type service struct {
	sagas  saga.Producer
	users  user.Repository
	fanOut notification.FanOut
	now    clock
}

func newService(sagas saga.Producer, users user.Repository, fanOut notification.FanOut) Service {
	return &service{sagas: sagas, users: users, fanOut: fanOut, now: utcNow}
}

func (s *service) RequestActivation(ctx context.Context, planID string) (*saga.Saga, error) {
	p, err := token.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !ValidPlan(planID) {
		return nil, ErrInvalidPlan
	}

	created, err := s.sagas.Create(ctx, SagaActivation, ActivationSteps, saga.Context{
		ctxUserID: p.UserID,
		ctxPlanID: planID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start subscription activation: %w", err)
	}

	logger.Get(ctx).Info("subscription activation requested",
		zap.String("user_id", p.UserID),
		zap.String("plan", planID),
		zap.String("saga_id", created.ID.Hex()))
	return created, nil
}

func (s *service) Review(ctx context.Context, userID bson.ObjectID, action Action) (*user.User, error) {
	if _, err := token.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, persistence.ErrEntityNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	upd, err := s.decide(u, action)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateSubscription(ctx, u.ID, upd); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	if action == ActionApprove {
		if err := s.fanOut.NotifyUser(ctx, u.ID, approvedMessage(u)); err != nil {
			// the subscription is already active; the user only misses the notice
			logger.Get(ctx).Warn("failed to notify user about approval", zap.Error(err))
		}
	}

	logger.Get(ctx).Info("subscription reviewed",
		zap.String("user_id", u.ID.Hex()),
		zap.String("action", string(action)))
	return s.users.FindByID(ctx, u.ID)
}

func (s *service) decide(u *user.User, action Action) (user.SubscriptionUpdate, error) {
	switch action {
	case ActionApprove:
		now := s.now()
		upd := user.SubscriptionUpdate{
			Status:      lo.ToPtr(user.SubscriptionActive),
			Payment:     lo.ToPtr(user.PaymentConfirmed),
			ActivatedAt: &now,
		}
		if u.ExpiresAt == nil || u.ExpiresAt.Before(now) {
			upd.ExpiresAt = lo.ToPtr(now.Add(subscriptionPeriod))
		}
		return upd, nil
	case ActionReject:
		return user.SubscriptionUpdate{
			Status:  lo.ToPtr(user.SubscriptionInactive),
			Payment: lo.ToPtr(user.PaymentFailed),
		}, nil
	case ActionCancel:
		return user.SubscriptionUpdate{Status: lo.ToPtr(user.SubscriptionCancelled)}, nil
	default:
		return user.SubscriptionUpdate{}, ErrInvalidAction
	}
}

func approvedMessage(u *user.User) notification.Message {
	return notification.Message{
		Type:    notification.TypePaymentApproved,
		Title:   "Payment Approved",
		Message: fmt.Sprintf("Your payment for the %s plan has been approved. Enjoy streaming!", u.SubscriptionPlan),
		Metadata: bson.M{
			"userId":           u.ID.Hex(),
			"subscriptionPlan": u.SubscriptionPlan,
		},
	}
}
