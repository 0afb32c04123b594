package reference

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrateURL swaps the postgres scheme for the one the pgx/v5 migrate driver registers
func migrateURL(connString string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, scheme) {
			return "pgx5://" + strings.TrimPrefix(connString, scheme)
		}
	}
	return connString
}

func RunMigrations(connString string) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(connString))
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("Reference schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}

	version, _, _ := m.Version()
	log.Info().Uint("version", version).Msg("Migrated reference schema")

	return nil
}
