package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func TestMigrate_CreatesRunTables(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, Migrate(sqlDB))

	for _, table := range []string{"schema_version", "runs", "run_features"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var version int
	require.NoError(t, sqlDB.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, len(All), version)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, Migrate(sqlDB))
	require.NoError(t, Migrate(sqlDB))

	var version int
	require.NoError(t, sqlDB.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, len(All), version)
}

func TestMigrate_StopsAtFailedMigration(t *testing.T) {
	origAll := All
	defer func() { All = origAll }()
	All = []string{
		`CREATE TABLE ok_table (id INTEGER PRIMARY KEY)`,
		`NOT VALID SQL`,
	}

	sqlDB := openTestDB(t)
	require.Error(t, Migrate(sqlDB))

	var version int
	require.NoError(t, sqlDB.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, 1, version)
}

func TestOpen_RecordsAndReadsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	sqlDB, err := Open(path)
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = sqlDB.Exec(`
		INSERT INTO runs (features, scenarios, failed, skipped, undefined, pending, passed)
		VALUES (1, 3, 1, 0, 0, 0, 2)`)
	require.NoError(t, err)

	var scenarios, failed int
	require.NoError(t, sqlDB.QueryRow(`SELECT scenarios, failed FROM runs`).Scan(&scenarios, &failed))
	assert.Equal(t, 3, scenarios)
	assert.Equal(t, 1, failed)
}
