package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchemaAndSeedsConfig(t *testing.T) {
	ctx := context.Background()
	pool, err := Open(ctx, t.TempDir(), 5000)
	require.NoError(t, err)
	defer pool.Close(ctx)

	db, err := pool.Get()
	require.NoError(t, err)

	var version string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = 'db_version'`).Scan(&version))
	require.Equal(t, schemaVersion, version)
}

func TestCloseThenGetFailsWithNotInitialized(t *testing.T) {
	ctx := context.Background()
	pool, err := Open(ctx, t.TempDir(), 5000)
	require.NoError(t, err)
	require.NoError(t, pool.Close(ctx))

	_, err = pool.Get()
	require.Error(t, err)
}

func TestReopenOnExistingDataDirIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	pool1, err := Open(ctx, dir, 5000)
	require.NoError(t, err)
	db, err := pool1.Get()
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO directories (name, path, modified_time) VALUES ('a', '/a', '2020-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, pool1.Close(ctx))

	pool2, err := Open(ctx, dir, 5000)
	require.NoError(t, err)
	defer pool2.Close(ctx)

	db2, err := pool2.Get()
	require.NoError(t, err)
	var count int
	require.NoError(t, db2.QueryRowContext(ctx, `SELECT COUNT(*) FROM directories`).Scan(&count))
	require.Equal(t, 1, count)
}
