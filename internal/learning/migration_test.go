package learning

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations(t *testing.T) {
	store := setupTestStore(t)

	versions, err := store.GetAppliedVersions()
	require.NoError(t, err)
	require.Len(t, versions, len(migrations))
	for i, v := range versions {
		assert.Equal(t, migrations[i].Version, v.Version)
		assert.False(t, v.AppliedAt.IsZero())
	}

	latest, err := store.GetLatestVersion()
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, latest)
}

func TestApplyMigrations_Idempotency(t *testing.T) {
	t.Run("applying migrations multiple times is safe", func(t *testing.T) {
		ctx := context.Background()
		store := setupTestStore(t)

		require.NoError(t, store.ApplyMigrations(ctx))
		require.NoError(t, store.ApplyMigrations(ctx))

		versions, err := store.GetAppliedVersions()
		require.NoError(t, err)
		assert.Len(t, versions, len(migrations))
	})

	t.Run("reopening a file database keeps its data", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "history.db")

		store, err := NewStore(path)
		require.NoError(t, err)
		_, err = store.RecordAnalysis(ctx, sampleRequest("p1"), sampleAnalysis("p1"))
		require.NoError(t, err)
		require.NoError(t, store.Close())

		reopened, err := NewStore(path)
		require.NoError(t, err)
		defer reopened.Close()

		n, err := reopened.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, path, reopened.Path())
	})
}

func TestIsMigrationApplied(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		name    string
		version int
		want    bool
	}{
		{"initial schema", 1, true},
		{"difficulty column", 2, true},
		{"nonexistent version", 999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.IsMigrationApplied(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrations_Schema(t *testing.T) {
	store := setupTestStore(t)

	var count int
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='analyses'`).Scan(&count))
	assert.Equal(t, 1, count)

	for _, idx := range []string{
		"idx_analyses_problem",
		"idx_analyses_created_at",
		"idx_analyses_type",
		"idx_analyses_pattern",
	} {
		require.NoError(t, store.db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&count))
		assert.Equal(t, 1, count, "index %s", idx)
	}

	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('analyses') WHERE name='problem_difficulty'`).Scan(&count))
	assert.Equal(t, 1, count)
}
