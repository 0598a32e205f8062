package mem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessTokens_SetGet(t *testing.T) {
	store := NewAccessTokens()
	ctx := context.Background()

	store.Set(ctx, "k", "tok", time.Minute)

	got, ok := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "tok", got)

	_, ok = store.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestAccessTokens_Expiry(t *testing.T) {
	store := NewAccessTokens()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(ctx, "k", "tok", 30*time.Second)

	now = now.Add(29 * time.Second)
	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = store.Get(ctx, "k")
	assert.False(t, ok, "token must not be served at its expiry instant")

	assert.Empty(t, store.data, "expired entry should be evicted on read")
}

func TestAccessTokens_Delete(t *testing.T) {
	store := NewAccessTokens()
	ctx := context.Background()

	store.Set(ctx, "k", "tok", time.Minute)
	store.Delete(ctx, "k")

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
}
