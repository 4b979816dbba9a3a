package database

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id TEXT);\n", ExtractUpMigration(content))
	assert.Equal(t, "SELECT 1;", ExtractUpMigration("SELECT 1;"))
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	extra := fstest.MapFS{
		"extra/0100_notes.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE notes (id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE notes;\n")},
	}
	require.NoError(t, ApplyMigrations(ctx, db, SQLiteDialect, extra, "extra"))
	require.NoError(t, ApplyMigrations(ctx, db, SQLiteDialect, extra, "extra"))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE name = ?", "0100_notes.sql").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"papers", "paper_authors", "paper_files", "review_assignments", "reviews", "users", "notes"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestDialectRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", PostgresDialect.Rebind(q))
	assert.Equal(t, q, SQLiteDialect.Rebind(q))
}

func TestTimeScan(t *testing.T) {
	want := time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)

	var fromNative Time
	require.NoError(t, fromNative.Scan(want.In(time.FixedZone("x", 3600))))
	assert.True(t, want.Equal(fromNative.Time))

	var fromMillis Time
	require.NoError(t, fromMillis.Scan(SQLiteDialect.TimeArg(want)))
	assert.True(t, want.Equal(fromMillis.Time))

	var null Time
	require.NoError(t, null.Scan(nil))
	assert.Nil(t, null.Ptr())
	assert.Nil(t, SQLiteDialect.NullTimeArg(nil))
	require.NoError(t, null.Scan(PostgresDialect.NullTimeArg(&want)))
	require.NotNil(t, null.Ptr())
	assert.True(t, want.Equal(*null.Ptr()))

	var bad Time
	assert.Error(t, bad.Scan("yesterday"))
}
