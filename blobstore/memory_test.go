package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.Empty(t, store.Names(ctx))

	require.NoError(t, store.Save(ctx, "a", []byte("v1")))
	require.NoError(t, store.Save(ctx, "b", []byte("v2")))

	assert.ElementsMatch(t, []string{"a", "b"}, store.Names(ctx))

	got, err := store.Fetch(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Mutating the returned slice must not affect the stored value.
	got[0] = 'X'
	got, err = store.Fetch(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, store.Remove(ctx, "a"))
	_, err = store.Fetch(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing an absent name succeeds.
	assert.NoError(t, store.Remove(ctx, "a"))
}
