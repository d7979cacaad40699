package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Store{Redis: rdb}, mr
}

func TestStore_AddAndRead(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, 7, 1, 2, true))
	require.NoError(t, s.Add(ctx, 7, 1, 1, true))
	require.NoError(t, s.Add(ctx, 7, 2, 1, false))

	assert.Equal(t, "3", mr.HGet("cart_7", "1"))

	ids, err := s.SelectedSKUIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	counts, err := s.Quantities(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 3, 2: 1}, counts)

	entries, err := s.List(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{SKUID: 1, Count: 3, Selected: true},
		{SKUID: 2, Count: 1, Selected: false},
	}, entries)
}

func TestStore_AddRejectsNonPositive(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.Add(context.Background(), 7, 1, 0, true), ErrInvalidCount)
	assert.ErrorIs(t, s.Update(context.Background(), 7, 1, -1, true), ErrInvalidCount)
}

func TestStore_UpdateTogglesSelection(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, 7, 1, 2, true))
	require.NoError(t, s.Update(ctx, 7, 1, 5, false))

	assert.Equal(t, "5", mr.HGet("cart_7", "1"))
	ok, err := mr.SIsMember("cart_selected_7", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RemoveEntriesIsIdempotent(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, 7, 1, 2, true))
	require.NoError(t, s.Add(ctx, 7, 2, 1, true))
	require.NoError(t, s.Add(ctx, 7, 3, 1, false))

	require.NoError(t, s.RemoveEntries(ctx, 7, []int64{1, 2}))
	require.NoError(t, s.RemoveEntries(ctx, 7, []int64{1, 2}))
	require.NoError(t, s.RemoveEntries(ctx, 7, nil))

	counts, err := s.Quantities(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{3: 1}, counts)
	assert.False(t, mr.Exists("cart_selected_7"))
}

func TestStore_SelectAll(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, 7, 1, 2, false))
	require.NoError(t, s.Add(ctx, 7, 2, 1, false))

	require.NoError(t, s.SelectAll(ctx, 7, true))
	ids, err := s.SelectedSKUIDs(ctx, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)

	require.NoError(t, s.SelectAll(ctx, 7, false))
	ids, err = s.SelectedSKUIDs(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_CorruptValues(t *testing.T) {
	s, mr := newStore(t)
	mr.HSet("cart_7", "1", "many")
	_, err := s.Quantities(context.Background(), 7)
	assert.Error(t, err)

	_, err = mr.SAdd("cart_selected_8", "abc")
	require.NoError(t, err)
	_, err = s.SelectedSKUIDs(context.Background(), 8)
	assert.Error(t, err)
}

func TestStore_RedisDown(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()
	assert.Error(t, s.RemoveEntries(context.Background(), 7, []int64{1}))
}
