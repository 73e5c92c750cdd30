package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/pkg/database"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	raw, err := database.New(database.Config{Path: database.MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	_, err = raw.Exec("CREATE TABLE notes (body TEXT NOT NULL)")
	require.NoError(t, err)
	return NewDB(raw.DB, zap.NewNop())
}

func countNotes(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Executor(context.Background()).QueryRowContext(context.Background(), "SELECT COUNT(*) FROM notes").Scan(&n))
	return n
}

func insertNote(ctx context.Context, db *DB, body string) error {
	_, err := db.Executor(ctx).ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", body)
	return err
}

func TestWithTransaction_Commit(t *testing.T) {
	db := newTestDB(t)

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		if err := insertNote(ctx, db, "a"); err != nil {
			return err
		}
		// nested calls share the outer transaction
		return db.WithTransaction(ctx, func(inner context.Context) error {
			return insertNote(inner, db, "b")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, countNotes(t, db))
}

func TestWithTransaction_Rollback(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insertNote(ctx, db, "a"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countNotes(t, db))
}

func TestWithTransaction_Panic(t *testing.T) {
	db := newTestDB(t)

	assert.Panics(t, func() {
		_ = db.WithTransaction(context.Background(), func(ctx context.Context) error {
			_ = insertNote(ctx, db, "a")
			panic("boom")
		})
	})
	assert.Equal(t, 0, countNotes(t, db))
}
