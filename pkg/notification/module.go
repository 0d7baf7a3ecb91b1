package notification

import (
	"embed"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo/migrations"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"go.uber.org/fx"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

// NewNotificationModule provides FanOut with user.Repository as the audience source.
func NewNotificationModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newStore,
			func(r user.Repository) Recipients { return r },
			NewFanOut,
		),
		migrations.ProvideSource(migrations.Source{
			Name:       "notification",
			Collection: "notification_migrations",
			FS:         migrationsFS,
			Dir:        "migrations",
		}),
	)
}
