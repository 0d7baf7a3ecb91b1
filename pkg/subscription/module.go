package subscription

import (
	"github.com/Sokol111/streamflix-reliability/pkg/saga"
	"go.uber.org/fx"
)

// NewSubscriptionModule provides the subscription Service and its saga steps.
func NewSubscriptionModule() fx.Option {
	return fx.Options(
		fx.Provide(newService),
		saga.AsStep(newMarkPendingStep),
		saga.AsStep(newNotifyAdminsStep),
	)
}
