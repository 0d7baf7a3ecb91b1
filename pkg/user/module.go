package user

import (
	"embed"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo/migrations"
	"go.uber.org/fx"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

func NewUserModule() fx.Option {
	return fx.Options(
		fx.Provide(newRepository),
		migrations.ProvideSource(migrations.Source{
			Name:       "user",
			Collection: "user_migrations",
			FS:         migrationsFS,
			Dir:        "migrations",
		}),
	)
}
