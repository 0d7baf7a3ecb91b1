package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

type User struct {
	ID                 bson.ObjectID      `bson:"_id"`
	Name               string             `bson:"name"`
	Email              string             `bson:"email"`
	Role               Role               `bson:"role"`
	SubscriptionPlan   string             `bson:"subscriptionPlan,omitempty"`
	SubscriptionStatus SubscriptionStatus `bson:"subscriptionStatus,omitempty"`
	PaymentStatus      PaymentStatus      `bson:"paymentStatus,omitempty"`
	PaymentDate        *time.Time         `bson:"paymentDate,omitempty"`
	ActivatedAt        *time.Time         `bson:"activatedAt,omitempty"`
	ExpiresAt          *time.Time         `bson:"expiresAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SubscriptionUpdate lists the subscription fields to overwrite. Nil fields are left as they are.
type SubscriptionUpdate struct {
	Plan        *string
	Status      *SubscriptionStatus
	Payment     *PaymentStatus
	PaymentDate *time.Time
	ActivatedAt *time.Time
	ExpiresAt   *time.Time
}

func (u SubscriptionUpdate) setDocument(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.Plan != nil {
		set["subscriptionPlan"] = *u.Plan
	}
	if u.Status != nil {
		set["subscriptionStatus"] = *u.Status
	}
	if u.Payment != nil {
		set["paymentStatus"] = *u.Payment
	}
	if u.PaymentDate != nil {
		set["paymentDate"] = *u.PaymentDate
	}
	if u.ActivatedAt != nil {
		set["activatedAt"] = *u.ActivatedAt
	}
	if u.ExpiresAt != nil {
		set["expiresAt"] = *u.ExpiresAt
	}
	return set
}
