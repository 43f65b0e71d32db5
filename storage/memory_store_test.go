package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlobStore_PutGet(t *testing.T) {
	store := NewMemoryBlobStore()
	ctx := context.Background()

	id, err := store.Put(ctx, Blob{
		Filename:    "receipt.png",
		ContentType: "image/png",
		Data:        []byte("fake-png-bytes"),
		UploadedBy:  "user-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	blob, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "receipt.png", blob.Filename)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Equal(t, []byte("fake-png-bytes"), blob.Data)
	assert.Equal(t, "user-1", blob.UploadedBy)
	assert.False(t, blob.CreatedAt.IsZero())
}

func TestMemoryBlobStore_GetMissing(t *testing.T) {
	store := NewMemoryBlobStore()

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestMemoryBlobStore_Exists(t *testing.T) {
	store := NewMemoryBlobStore()
	ctx := context.Background()

	id, err := store.Put(ctx, Blob{Filename: "a.txt", ContentType: "text/plain", Data: []byte("a")})
	require.NoError(t, err)

	exists, err := store.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "no-such-id")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryBlobStore_DataIsolated(t *testing.T) {
	store := NewMemoryBlobStore()
	ctx := context.Background()

	original := []byte("original")
	id, err := store.Put(ctx, Blob{Filename: "b.txt", ContentType: "text/plain", Data: original})
	require.NoError(t, err)

	// Mutating the caller's slice must not affect what was stored
	original[0] = 'X'

	blob, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), blob.Data)
}
