package cli

import (
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the index migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// migrations run from Invoke; the app is never started
			app := fx.New(
				domainModules(flags, false),
				fx.Invoke(runMigrations),
			)
			return app.Err()
		},
	}
}

func runMigrations(log *zap.Logger, m migrations.Migrator, sources []migrations.Source) error {
	log.Info("running migrations", zap.Int("sources", len(sources)))
	if err := migrations.UpAll(m, sources); err != nil {
		return err
	}
	log.Info("migrations completed")
	return nil
}
