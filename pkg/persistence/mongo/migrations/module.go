package migrations

import (
	"context"
	"fmt"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type sourcesIn struct {
	fx.In
	Sources []Source `group:"migration_sources"`
}

// NewMigrationsModule provides a Migrator and, when auto-migrate is on,
// applies every registered Source on start.
func NewMigrationsModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			provideMigrator,
			provideSources,
		),
		fx.Invoke(registerAutoMigrate),
	)
}

func provideMigrator(log *zap.Logger, conf Config, mongoConf mongo.Config) (Migrator, error) {
	return newMigrator(mongoConf.BuildURI(), log.With(zap.String("component", "migrations")), conf.LockingTimeout)
}

func provideSources(in sourcesIn) []Source {
	return in.Sources
}

func registerAutoMigrate(lc fx.Lifecycle, log *zap.Logger, conf Config, m Migrator, sources []Source) {
	if !conf.AutoMigrate {
		log.Info("migrations auto-run is disabled, migrator available for manual use")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("auto-running migrations on startup",
				zap.Int("sources", len(sources)),
				zap.Duration("locking-timeout", conf.GetLockingTimeoutDuration()))
			return UpAll(m, sources)
		},
	})
}

// UpAll applies the sources in order and stops at the first failure.
func UpAll(m Migrator, sources []Source) error {
	for _, src := range sources {
		if err := m.Up(src); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}
