package migrations

import (
	"io/fs"

	"go.uber.org/fx"
)

// Source is a set of embedded migrations tracked in its own collection.
type Source struct {
	// Name identifies the source in logs and CLI output.
	Name string
	// Collection stores applied versions for this source.
	Collection string
	FS         fs.FS
	Dir        string
}

// ProvideSource registers a Source in the migration_sources group.
func ProvideSource(src Source) fx.Option {
	return fx.Provide(
		fx.Annotate(
			func() Source { return src },
			fx.ResultTags(`group:"migration_sources"`),
		),
	)
}
