package local

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrov/imgvault/internal/blobstore"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("fake png data")

	key, err := store.Store(ctx, "acct_1", "image/png", bytes.NewReader(content))
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	reader, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestDiskStoreDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	key, err := store.Store(ctx, "acct_1", "image/jpeg", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDiskStoreNotFound(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDiskStorePathTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)

	err = store.Delete(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}
