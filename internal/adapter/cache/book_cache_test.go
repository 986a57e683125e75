package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	library "lending-service/internal/domain/library"
)

func setupTestCache(t *testing.T) (*RedisBookCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBookCache(client, 30*time.Second, zaptest.NewLogger(t)), mr
}

func TestBookCache_SetGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	books := []library.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", Available: true},
		{ID: 2, Title: "Meditations", Author: "Marcus Aurelius", Category: "Philosophy", Available: false},
	}
	require.NoError(t, c.SetList(ctx, "", books))

	got, err := c.GetList(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestBookCache_MissIsNotAnError(t *testing.T) {
	c, _ := setupTestCache(t)

	got, err := c.GetList(context.Background(), "Science Fiction")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookCache_CategoryKeysAreSeparate(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, "Philosophy", []library.Book{{ID: 1, Title: "Meditations"}}))

	got, err := c.GetList(ctx, "Software")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.GetList(ctx, "Philosophy")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestBookCache_TTL(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, "", []library.Book{{ID: 1}}))

	mr.FastForward(31 * time.Second)

	got, err := c.GetList(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookCache_InvalidateDropsAllKeys(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, "", []library.Book{{ID: 1}}))
	require.NoError(t, c.SetList(ctx, "Philosophy", []library.Book{{ID: 2}}))
	mr.Set("unrelated", "stays")

	require.NoError(t, c.Invalidate(ctx))

	got, err := c.GetList(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = c.GetList(ctx, "Philosophy")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Keys outside the books prefix are untouched.
	assert.True(t, mr.Exists("unrelated"))
}

func TestBookCache_InvalidateEmptyIsNoop(t *testing.T) {
	c, _ := setupTestCache(t)

	assert.NoError(t, c.Invalidate(context.Background()))
}
