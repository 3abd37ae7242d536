package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
)

// Migrate applies all pending schema migrations from the configured source
// path.  A database that is already current is not an error.
func Migrate(cfg config.DatabaseConfig, logger logging.Logger) error {
	m, err := migrate.New(cfg.MigrationsPath, cfg.DSN())
	if err != nil {
		return fmt.Errorf("postgres: initializing migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("closing migration source", logging.Err(srcErr))
		}
		if dbErr != nil {
			logger.Warn("closing migration database handle", logging.Err(dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database schema already current")
			return nil
		}
		return fmt.Errorf("postgres: applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("postgres: reading migration version: %w", err)
	}
	logger.Info("database migrations applied",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty))
	return nil
}
