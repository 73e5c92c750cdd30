package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql":      {Data: []byte("CREATE INDEX idx_a ON a(name);")},
		"001_initial_schema.sql": {Data: []byte("CREATE TABLE a (name TEXT);")},
		"README.md":              {Data: []byte("not a migration")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "initial_schema", migrations[0].Name)
	assert.Equal(t, "add_index", migrations[1].Name)
	assert.Contains(t, migrations[1].SQL, "CREATE INDEX")
}

func TestLoadMigrations_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no version", fstest.MapFS{"initial.sql": {Data: []byte("SELECT 1;")}}},
		{"non numeric version", fstest.MapFS{"abc_initial.sql": {Data: []byte("SELECT 1;")}}},
		{"zero version", fstest.MapFS{"000_initial.sql": {Data: []byte("SELECT 1;")}}},
		{"duplicate version", fstest.MapFS{
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 1;")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fsys)
			assert.Error(t, err)
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	db, err := New(Config{Path: filepath.Join(t.TempDir(), "nested", "test.db")}, logger)
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_initial.sql": {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);")},
	}

	migrator := NewMigrator(db, logger)
	applied, err := migrator.Migrate(ctx, fsys)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = migrator.Migrate(ctx, fsys)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	versions, err := migrator.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, versions)

	_, err = db.Exec("INSERT INTO items (name) VALUES (?)", "receipt")
	assert.NoError(t, err)
}

func TestMigrate_FailedMigrationIsNotRecorded(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	db, err := New(Config{Path: MemoryPath}, logger)
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_initial.sql": {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY);")},
		"002_broken.sql":  {Data: []byte("CREATE TABLE oops (")},
	}

	migrator := NewMigrator(db, logger)
	applied, err := migrator.Migrate(ctx, fsys)
	require.Error(t, err)
	assert.Equal(t, 1, applied)

	versions, err := migrator.Applied(ctx)
	require.NoError(t, err)
	assert.False(t, versions[2])
}

func TestNew(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrEmptyPath)

	db, err := New(Config{Path: MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, MemoryPath, db.Path())

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}
