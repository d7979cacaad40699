package history

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Store{Redis: rdb}, mr
}

func TestAdd_NewestFirstWithoutDuplicates(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3, 2} {
		require.NoError(t, s.Add(ctx, 7, id))
	}

	got, err := s.List(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, got)

	raw, err := mr.List("history_7")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, raw)
}

func TestAdd_TrimsToLimit(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for id := int64(1); id <= Limit+3; id++ {
		require.NoError(t, s.Add(ctx, 7, id))
	}

	got, err := s.List(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 7, 6, 5, 4}, got)
}

func TestList_EmptyAndPerUser(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, 1, 10))

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, got)
}

func TestList_BadEntry(t *testing.T) {
	s, mr := newStore(t)
	_, err := mr.Push("history_3", "abc")
	require.NoError(t, err)

	_, err = s.List(context.Background(), 3)
	assert.Error(t, err)
}
