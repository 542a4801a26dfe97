package memory

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/core/domain"
)

func TestBlobStore_RoundTrip(t *testing.T) {
	store := NewBlobStore("http://kb.test")
	ctx := context.Background()

	id, err := store.Store(ctx, "org_A", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, store.Len())

	url, err := store.URL(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "http://kb.test/files/"+id, url)

	rc, info, err := store.Open(ctx, id)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, domain.Namespace("org_A"), info.Namespace)
	assert.Equal(t, "text/plain", info.ContentType)
	assert.Equal(t, int64(5), info.Size)
}

func TestBlobStore_Delete_Idempotent(t *testing.T) {
	store := NewBlobStore("")
	ctx := context.Background()

	id, err := store.Store(ctx, "org_A", []byte("x"), "text/plain")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, _, err = store.Open(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestBlobStore_StoresCopy(t *testing.T) {
	store := NewBlobStore("")
	ctx := context.Background()
	data := []byte("abc")

	id, err := store.Store(ctx, "org_A", data, "text/plain")
	require.NoError(t, err)
	data[0] = 'z'

	rc, _, err := store.Open(ctx, id)
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "abc", string(got))
}
