package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/core/domain"
)

func testEntry(id string, ns domain.Namespace, hash string, created time.Time) *domain.Entry {
	return &domain.Entry{
		ID:          id,
		Namespace:   ns,
		Key:         id,
		ContentHash: hash,
		Metadata:    map[string]string{domain.MetaUploadedBy: string(ns)},
		CreatedAt:   created,
	}
}

func TestEntryStore_CreateAndGet(t *testing.T) {
	store := NewEntryStore()
	ctx := context.Background()

	_, err := store.CreateEntry(ctx, testEntry("e1", "org_A", "h1", time.Now()))
	require.NoError(t, err)

	got, err := store.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.ContentHash)

	_, err = store.GetEntry(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryStore_ReturnsCopies(t *testing.T) {
	store := NewEntryStore()
	ctx := context.Background()

	entry := testEntry("e1", "org_A", "h1", time.Now())
	_, err := store.CreateEntry(ctx, entry)
	require.NoError(t, err)

	entry.Metadata[domain.MetaUploadedBy] = "tampered"
	got, err := store.GetEntry(ctx, "e1")
	require.NoError(t, err)
	got.Metadata[domain.MetaCategory] = "tampered"

	again, err := store.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "org_A", again.UploadedBy())
	assert.NotContains(t, again.Metadata, domain.MetaCategory)
}

func TestEntryStore_CreateEntry_Conflict(t *testing.T) {
	store := NewEntryStore()
	ctx := context.Background()

	_, err := store.CreateEntry(ctx, testEntry("first", "org_A", "h", time.Now()))
	require.NoError(t, err)

	existing, err := store.CreateEntry(ctx, testEntry("second", "org_A", "h", time.Now()))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.NotNil(t, existing)
	assert.Equal(t, "first", existing.ID)

	// Another namespace is independent.
	_, err = store.CreateEntry(ctx, testEntry("third", "org_B", "h", time.Now()))
	assert.NoError(t, err)
}

func TestEntryStore_CreateEntry_Concurrent(t *testing.T) {
	store := NewEntryStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.CreateEntry(ctx, testEntry(fmt.Sprint(i), "org_A", "h", time.Now())); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	n, err := store.CountEntries(ctx, "org_A")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEntryStore_ListEntries(t *testing.T) {
	store := NewEntryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _ = store.CreateEntry(ctx, testEntry("b", "org_A", "h1", base))
	_, _ = store.CreateEntry(ctx, testEntry("a", "org_A", "h2", base))
	_, _ = store.CreateEntry(ctx, testEntry("c", "org_A", "h3", base.Add(time.Minute)))
	_, _ = store.CreateEntry(ctx, testEntry("x", "org_B", "h4", base.Add(time.Hour)))

	list, err := store.ListEntries(ctx, "org_A")
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestEntryStore_DeleteEntry(t *testing.T) {
	store := NewEntryStore()
	ctx := context.Background()

	_, _ = store.CreateEntry(ctx, testEntry("e1", "org_A", "h1", time.Now()))

	require.NoError(t, store.DeleteEntry(ctx, "e1"))
	require.NoError(t, store.DeleteEntry(ctx, "e1"))

	_, err := store.FindByHash(ctx, "org_A", "h1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
