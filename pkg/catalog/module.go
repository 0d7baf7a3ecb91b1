package catalog

import (
	"embed"

	"github.com/Sokol111/streamflix-reliability/pkg/outbox"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo/migrations"
	"go.uber.org/fx"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

// NewCatalogModule provides the movie Service and the movie_added outbox handler.
func NewCatalogModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newRepository,
			newService,
		),
		outbox.AsHandler(newMovieAddedHandler),
		migrations.ProvideSource(migrations.Source{
			Name:       "catalog",
			Collection: "catalog_migrations",
			FS:         migrationsFS,
			Dir:        "migrations",
		}),
	)
}
