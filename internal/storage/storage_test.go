package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, "file:storage_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// The store table must exist and accept rows after migrations.
	_, err = db.ExecContext(ctx, `INSERT INTO store(key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM store`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, "file:storage_tests_2?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Re-running migrations against the same database must be a no-op.
	require.NoError(t, runMigrations(ctx, db))
}
