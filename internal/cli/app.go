package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/catalog"
	"github.com/Sokol111/streamflix-reliability/pkg/core"
	"github.com/Sokol111/streamflix-reliability/pkg/notification"
	"github.com/Sokol111/streamflix-reliability/pkg/observability"
	"github.com/Sokol111/streamflix-reliability/pkg/outbox"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo/migrations"
	"github.com/Sokol111/streamflix-reliability/pkg/saga"
	"github.com/Sokol111/streamflix-reliability/pkg/security"
	"github.com/Sokol111/streamflix-reliability/pkg/subscription"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"go.uber.org/fx"
)

const oneShotTimeout = time.Minute

func coreModule(flags *globalFlags) fx.Option {
	if flags.configFile != "" {
		return core.NewCoreModule(core.WithConfigPath(flags.configFile))
	}
	return core.NewCoreModule()
}

// domainModules is everything a command needs to read and enqueue.
// Processors run only when withProcessors is set.
func domainModules(flags *globalFlags, withProcessors bool) fx.Option {
	var outboxOpts []outbox.Option
	var sagaOpts []saga.Option
	if !withProcessors {
		outboxOpts = append(outboxOpts, outbox.WithoutProcessor())
		sagaOpts = append(sagaOpts, saga.WithoutProcessor())
	}

	return fx.Options(
		coreModule(flags),
		observability.NewObservabilityModule(),
		mongo.NewMongoModule(),
		migrations.NewMigrationsModule(),
		security.NewSecurityModule(),
		user.NewUserModule(),
		notification.NewNotificationModule(),
		outbox.NewOutboxModule(outboxOpts...),
		saga.NewSagaModule(sagaOpts...),
		catalog.NewCatalogModule(),
		subscription.NewSubscriptionModule(),
	)
}

// runOnce starts the app, hands the populated dependencies to fn and stops.
func runOnce(ctx context.Context, app *fx.App, fn func(ctx context.Context) error) (err error) {
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, oneShotTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer stopCancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop: %w", stopErr)
		}
	}()

	return fn(ctx)
}
