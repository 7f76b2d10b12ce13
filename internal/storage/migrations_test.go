package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRawDB(t *testing.T) *sql.DB {
	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyMigrations(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))

	var version string
	err := db.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	// The records table exists and is writable.
	_, err = db.ExecContext(ctx,
		`INSERT INTO records (collection, body) VALUES ('documents', '{}')`)
	assert.NoError(t, err)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, ApplyMigrations(ctx, db))

	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRollbackMigration(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, RollbackMigration(ctx, db))

	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='records'").Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRollbackMigration_NothingApplied(t *testing.T) {
	db := openRawDB(t)

	err := RollbackMigration(context.Background(), db)
	assert.Error(t, err)
}
