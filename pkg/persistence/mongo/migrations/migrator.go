package migrations

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

type Migrator interface {
	// Up applies every pending migration of src.
	Up(src Source) error
	// Down rolls back every applied migration of src.
	Down(src Source) error
	// Version returns the current version of src.
	Version(src Source) (uint, bool, error)
}

type migrator struct {
	uri            string
	log            *zap.Logger
	lockingTimeout int
}

// newMigrator builds URL-based migrate instances. The mongodb database driver
// of golang-migrate runs its own client, separate from the application pool.
func newMigrator(uri string, log *zap.Logger, lockingTimeout int) (Migrator, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	return &migrator{
		uri:            uri,
		log:            log,
		lockingTimeout: lockingTimeout,
	}, nil
}

// databaseURL appends the migrate driver parameters to the mongo URI.
func databaseURL(uri, collection string, lockingTimeout int) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse mongo uri: %w", err)
	}
	q := u.Query()
	q.Set("x-migrations-collection", collection)
	q.Set("x-advisory-locking", "true")
	q.Set("x-advisory-lock-timeout", strconv.Itoa(lockingTimeout*60))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (m *migrator) instance(src Source) (*migrate.Migrate, error) {
	if src.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if src.FS == nil {
		return nil, fmt.Errorf("filesystem is required")
	}

	sourceDriver, err := iofs.New(src.FS, src.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source: %w", err)
	}

	dbURL, err := databaseURL(m.uri, src.Collection, m.lockingTimeout)
	if err != nil {
		return nil, err
	}

	mi, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mi, nil
}

func closeInstance(mi *migrate.Migrate, log *zap.Logger) {
	srcErr, dbErr := mi.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn("failed to close migrate instance", zap.Error(err))
	}
}

func (m *migrator) Up(src Source) error {
	log := m.log.With(zap.String("source", src.Name), zap.String("collection", src.Collection))
	log.Info("running migrations up")

	mi, err := m.instance(src)
	if err != nil {
		return err
	}
	defer closeInstance(mi, log)

	err = mi.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations up for %s: %w", src.Name, err)
	}

	version, dirty, err := mi.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.Info("migrations completed successfully",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func (m *migrator) Down(src Source) error {
	log := m.log.With(zap.String("source", src.Name), zap.String("collection", src.Collection))
	log.Warn("rolling back all migrations")

	mi, err := m.instance(src)
	if err != nil {
		return err
	}
	defer closeInstance(mi, log)

	err = mi.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to rollback")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations down for %s: %w", src.Name, err)
	}

	log.Info("migrations rolled back successfully")
	return nil
}

func (m *migrator) Version(src Source) (uint, bool, error) {
	mi, err := m.instance(src)
	if err != nil {
		return 0, false, err
	}
	defer closeInstance(mi, m.log)

	version, dirty, err := mi.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}
