package reference

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://user:pass@db:5432/urbantransit", migrateURL("postgres://user:pass@db:5432/urbantransit"))
	assert.Equal(t, "pgx5://db/urbantransit?sslmode=disable", migrateURL("postgresql://db/urbantransit?sslmode=disable"))
	assert.Equal(t, "pgx5://db/urbantransit", migrateURL("pgx5://db/urbantransit"))
}

func TestEmbeddedMigrations(t *testing.T) {
	source, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, _, err := source.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
}
