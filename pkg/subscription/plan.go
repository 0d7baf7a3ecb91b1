package subscription

import (
	"errors"

	"github.com/samber/lo"
)

// Plans are the subscription plans a user can request.
var Plans = []string{"Mobile", "Basic", "Standard", "Premium"}

// Error texts are persisted as saga step errors and shown to admins.
var (
	ErrMissingInput  = errors.New("Missing userId or planId") //nolint:staticcheck // persisted message
	ErrInvalidPlan   = errors.New("Invalid plan")             //nolint:staticcheck // persisted message
	ErrUserNotFound  = errors.New("User not found")           //nolint:staticcheck // persisted message
	ErrInvalidAction = errors.New("Invalid action")           //nolint:staticcheck // persisted message
)

func ValidPlan(plan string) bool {
	return lo.Contains(Plans, plan)
}
