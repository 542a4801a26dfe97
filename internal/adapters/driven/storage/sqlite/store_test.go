package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "supportly-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func newEntry(id string, ns domain.Namespace, hash string, created time.Time) *domain.Entry {
	return &domain.Entry{
		ID:          id,
		Namespace:   ns,
		Key:         id + ".txt",
		Title:       "Title " + id,
		ContentHash: hash,
		MIMEType:    "text/plain",
		Size:        12,
		ChunkCount:  2,
		Metadata: map[string]string{
			domain.MetaStorageID:  "blob-" + id,
			domain.MetaUploadedBy: string(ns),
			domain.MetaFilename:   id + ".txt",
		},
		CreatedAt: created,
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
	assert.Equal(t, "entries.db", filepath.Base(store.Path()))
}

func TestNewStore_MigrationsAreRecorded(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	// Reopening must not re-run the migration.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

// ==================== Entry Store Tests ====================

func TestEntryStore_CreateAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	now := time.Now().UTC().Truncate(time.Microsecond)
	created, err := entries.CreateEntry(ctx, newEntry("e1", "org_A", "hash1", now))
	require.NoError(t, err)
	assert.Equal(t, "e1", created.ID)

	got, err := entries.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.Namespace("org_A"), got.Namespace)
	assert.Equal(t, "hash1", got.ContentHash)
	assert.Equal(t, "text/plain", got.MIMEType)
	assert.Equal(t, int64(12), got.Size)
	assert.Equal(t, 2, got.ChunkCount)
	assert.Equal(t, "blob-e1", got.StorageID())
	assert.Equal(t, "org_A", got.UploadedBy())
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestEntryStore_GetEntry_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.EntryStore().GetEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryStore_CreateEntry_DuplicateHashReturnsExisting(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	_, err := entries.CreateEntry(ctx, newEntry("first", "org_A", "same", time.Now()))
	require.NoError(t, err)

	existing, err := entries.CreateEntry(ctx, newEntry("second", "org_A", "same", time.Now()))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.NotNil(t, existing)
	assert.Equal(t, "first", existing.ID)

	_, err = entries.GetEntry(ctx, "second")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryStore_CreateEntry_SameHashDifferentNamespace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	_, err := entries.CreateEntry(ctx, newEntry("a", "org_A", "same", time.Now()))
	require.NoError(t, err)
	_, err = entries.CreateEntry(ctx, newEntry("b", "org_B", "same", time.Now()))
	require.NoError(t, err)

	a, err := entries.FindByHash(ctx, "org_A", "same")
	require.NoError(t, err)
	b, err := entries.FindByHash(ctx, "org_B", "same")
	require.NoError(t, err)
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "b", b.ID)
}

func TestEntryStore_CreateEntry_ConcurrentSameHash(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := entries.CreateEntry(ctx, newEntry(fmt.Sprintf("e%d", i), "org_A", "race", time.Now()))
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	count, err := entries.CountEntries(ctx, "org_A")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEntryStore_FindByHash_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.EntryStore().FindByHash(context.Background(), "org_A", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryStore_ListEntries_NewestFirstAndScoped(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := entries.CreateEntry(ctx, newEntry("old", "org_A", "h1", base))
	require.NoError(t, err)
	_, err = entries.CreateEntry(ctx, newEntry("new", "org_A", "h2", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = entries.CreateEntry(ctx, newEntry("other", "org_B", "h3", base.Add(2*time.Hour)))
	require.NoError(t, err)

	list, err := entries.ListEntries(ctx, "org_A")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)

	empty, err := entries.ListEntries(ctx, "org_C")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEntryStore_DeleteEntry_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	_, err := entries.CreateEntry(ctx, newEntry("e1", "org_A", "h1", time.Now()))
	require.NoError(t, err)

	require.NoError(t, entries.DeleteEntry(ctx, "e1"))
	require.NoError(t, entries.DeleteEntry(ctx, "e1"))

	_, err = entries.GetEntry(ctx, "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The hash is free again after delete.
	_, err = entries.CreateEntry(ctx, newEntry("e2", "org_A", "h1", time.Now()))
	assert.NoError(t, err)
}

func TestEntryStore_NilMetadata(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entries := store.EntryStore()

	entry := newEntry("e1", "org_A", "h1", time.Now())
	entry.Metadata = nil
	_, err := entries.CreateEntry(ctx, entry)
	require.NoError(t, err)

	got, err := entries.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.NotNil(t, got.Metadata)
}
