package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/notification"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/saga"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	SagaActivation = "subscription_activation"

	StepMarkPending  = "mark_pending"
	StepNotifyAdmins = "notify_admins"

	ctxUserID = "userId"
	ctxPlanID = "planId"

	subscriptionPeriod = 30 * 24 * time.Hour
)

// ActivationSteps is the step list of a subscription_activation saga.
var ActivationSteps = []string{StepMarkPending, StepNotifyAdmins}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// loadUser resolves the userId/planId pair of a saga context.
func loadUser(ctx context.Context, users user.Repository, sagaCtx saga.Context) (*user.User, string, error) {
	userID, planID := sagaCtx.String(ctxUserID), sagaCtx.String(ctxPlanID)
	if userID == "" || planID == "" {
		return nil, "", ErrMissingInput
	}

	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, "", ErrUserNotFound
	}
	u, err := users.FindByID(ctx, id)
	if errors.Is(err, persistence.ErrEntityNotFound) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return u, planID, nil
}

type markPendingStep struct {
	users user.Repository
	now   clock
}

func newMarkPendingStep(users user.Repository) saga.NamedStep {
	return saga.NamedStep{Name: StepMarkPending, Handler: &markPendingStep{users: users, now: utcNow}}
}

// Execute puts the user's subscription into pending payment for the requested plan.
func (s *markPendingStep) Execute(ctx context.Context, sagaCtx saga.Context) error {
	if sagaCtx.String(ctxUserID) == "" || sagaCtx.String(ctxPlanID) == "" {
		return ErrMissingInput
	}
	if !ValidPlan(sagaCtx.String(ctxPlanID)) {
		return ErrInvalidPlan
	}
	u, plan, err := loadUser(ctx, s.users, sagaCtx)
	if err != nil {
		return err
	}

	now := s.now()
	return s.users.UpdateSubscription(ctx, u.ID, user.SubscriptionUpdate{
		Plan:        &plan,
		Status:      lo.ToPtr(user.SubscriptionPending),
		Payment:     lo.ToPtr(user.PaymentPending),
		PaymentDate: &now,
		ExpiresAt:   lo.ToPtr(now.Add(subscriptionPeriod)),
	})
}

type notifyAdminsStep struct {
	users  user.Repository
	fanOut notification.FanOut
}

func newNotifyAdminsStep(users user.Repository, fanOut notification.FanOut) saga.NamedStep {
	return saga.NamedStep{Name: StepNotifyAdmins, Handler: &notifyAdminsStep{users: users, fanOut: fanOut}}
}

func (s *notifyAdminsStep) Execute(ctx context.Context, sagaCtx saga.Context) error {
	u, plan, err := loadUser(ctx, s.users, sagaCtx)
	if err != nil {
		return err
	}

	metadata := bson.M{
		"userId":           u.ID.Hex(),
		"userName":         u.Name,
		"userEmail":        u.Email,
		"subscriptionPlan": plan,
	}
	if u.PaymentDate != nil {
		metadata["paymentDate"] = *u.PaymentDate
	}

	_, err = s.fanOut.NotifyAllAdmins(ctx, notification.Message{
		Type:     notification.TypePaymentPending,
		Title:    "New Payment Pending Approval",
		Message:  fmt.Sprintf("%s (%s) has submitted a payment for %s plan. Please review and approve.", u.Name, u.Email, plan),
		Metadata: metadata,
	})
	return err
}
