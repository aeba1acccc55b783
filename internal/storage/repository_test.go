package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "financas.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func TestRepositoryPutGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, found, err := repo.GetAddress(ctx, "01001000")
	require.NoError(t, err)
	assert.False(t, found)

	want := core.Address{PostalCode: "01001000", Street: "Praça da Sé", District: "Sé", City: "São Paulo", Region: "SP"}
	require.NoError(t, repo.PutAddress(ctx, want))

	got, found, err := repo.GetAddress(ctx, "01001000")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestRepositoryUpsert(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutAddress(ctx, core.Address{PostalCode: "20040002", City: "Rio"}))
	require.NoError(t, repo.PutAddress(ctx, core.Address{PostalCode: "20040002", City: "Rio de Janeiro", Region: "RJ"}))

	got, _, err := repo.GetAddress(ctx, "20040002")
	require.NoError(t, err)
	assert.Equal(t, "Rio de Janeiro", got.City)
	assert.Equal(t, "RJ", got.Region)

	n, err := repo.CountAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepositoryRejectsEmptyCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.Error(t, repo.PutAddress(context.Background(), core.Address{City: "Nowhere"}))
}

func TestRepositoryReopenKeepsData(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.PutAddress(ctx, core.Address{PostalCode: "70040010", City: "Brasília", Region: "DF"}))
	require.NoError(t, repo.Close())

	// Migrations are idempotent on an existing database.
	again, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer again.Close()

	got, found, err := again.GetAddress(ctx, "70040010")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Brasília", got.City)
	require.NoError(t, again.Ping(ctx))
}
