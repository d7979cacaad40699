package redisx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	first, err := MarkOnce(ctx, rdb, "dedup:cart:e1", TTLDedup)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := MarkOnce(ctx, rdb, "dedup:cart:e1", TTLDedup)
	require.NoError(t, err)
	assert.False(t, again)

	ok, err := Exists(ctx, rdb, "dedup:cart:e1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, TTLDedup, mr.TTL("dedup:cart:e1"))
}
