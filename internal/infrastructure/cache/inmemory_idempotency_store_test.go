package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	claimed, err := store.MarkProcessed(ctx, "pay-req-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim must win")

	claimed, err = store.MarkProcessed(ctx, "pay-req-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	seen, err := store.IsProcessed(ctx, "pay-req-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.IsProcessed(ctx, "pay-req-2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestInMemoryIdempotencyStore_ExpiredKeyCanBeReclaimed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	claimed, err := store.MarkProcessed(ctx, "pay-req-1", time.Nanosecond)
	require.NoError(t, err)
	assert.True(t, claimed)

	time.Sleep(5 * time.Millisecond)

	seen, err := store.IsProcessed(ctx, "pay-req-1")
	require.NoError(t, err)
	assert.False(t, seen, "expired key reads as unseen")

	claimed, err = store.MarkProcessed(ctx, "pay-req-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "expired key can be claimed again")
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "a", time.Nanosecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "b", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
