package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ariefcatur/go-realtime-checkout/internal/redisx"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidCount = errors.New("count must be positive")

type Entry struct {
	SKUID    int64 `json:"sku_id"`
	Count    int   `json:"count"`
	Selected bool  `json:"selected"`
}

// Store keeps a user's cart in two keys: a hash of sku counts and a set of
// selected sku ids. It implements orders.CartStore.
type Store struct {
	Redis redis.Cmdable
}

func cartKey(userID int64) string     { return fmt.Sprintf(redisx.KeyCart, userID) }
func selectedKey(userID int64) string { return fmt.Sprintf(redisx.KeyCartSelected, userID) }

func (s *Store) SelectedSKUIDs(ctx context.Context, userID int64) ([]int64, error) {
	members, err := s.Redis.SMembers(ctx, selectedKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("selected sku %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) Quantities(ctx context.Context, userID int64) (map[int64]int, error) {
	raw, err := s.Redis.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cart sku %q: %w", k, err)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("cart count for sku %d: %w", id, err)
		}
		out[id] = n
	}
	return out, nil
}

// RemoveEntries drops skuIDs from both keys. Removing absent entries is not an
// error, so the call can be retried.
func (s *Store) RemoveEntries(ctx context.Context, userID int64, skuIDs []int64) error {
	if len(skuIDs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(skuIDs))
	members := make([]any, 0, len(skuIDs))
	for _, id := range skuIDs {
		f := strconv.FormatInt(id, 10)
		fields = append(fields, f)
		members = append(members, f)
	}
	_, err := s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, cartKey(userID), fields...)
		p.SRem(ctx, selectedKey(userID), members...)
		return nil
	})
	return err
}

// Add increments the count of skuID; an existing entry keeps growing.
func (s *Store) Add(ctx context.Context, userID, skuID int64, count int, selected bool) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	field := strconv.FormatInt(skuID, 10)
	_, err := s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, cartKey(userID), field, int64(count))
		if selected {
			p.SAdd(ctx, selectedKey(userID), field)
		}
		return nil
	})
	return err
}

// Update overwrites count and selection of skuID.
func (s *Store) Update(ctx context.Context, userID, skuID int64, count int, selected bool) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	field := strconv.FormatInt(skuID, 10)
	_, err := s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, cartKey(userID), field, count)
		if selected {
			p.SAdd(ctx, selectedKey(userID), field)
		} else {
			p.SRem(ctx, selectedKey(userID), field)
		}
		return nil
	})
	return err
}

func (s *Store) Delete(ctx context.Context, userID, skuID int64) error {
	return s.RemoveEntries(ctx, userID, []int64{skuID})
}

func (s *Store) SelectAll(ctx context.Context, userID int64, selected bool) error {
	if !selected {
		return s.Redis.Del(ctx, selectedKey(userID)).Err()
	}
	fields, err := s.Redis.HKeys(ctx, cartKey(userID)).Result()
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	members := make([]any, len(fields))
	for i, f := range fields {
		members[i] = f
	}
	return s.Redis.SAdd(ctx, selectedKey(userID), members...).Err()
}

// List returns the cart sorted by sku id.
func (s *Store) List(ctx context.Context, userID int64) ([]Entry, error) {
	counts, err := s.Quantities(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected, err := s.SelectedSKUIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	isSelected := make(map[int64]bool, len(selected))
	for _, id := range selected {
		isSelected[id] = true
	}

	out := make([]Entry, 0, len(counts))
	for id, n := range counts {
		out = append(out, Entry{SKUID: id, Count: n, Selected: isSelected[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKUID < out[j].SKUID })
	return out, nil
}
