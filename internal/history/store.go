package history

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ariefcatur/go-realtime-checkout/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Limit is how many skus a user's history keeps.
const Limit = 5

// Store keeps per-user recently viewed skus in a Redis list, newest first.
type Store struct {
	Redis redis.Cmdable
}

func key(userID int64) string { return fmt.Sprintf(redisx.KeyHistory, userID) }

// Add moves skuID to the head of the list and trims it to Limit.
func (s *Store) Add(ctx context.Context, userID, skuID int64) error {
	k := key(userID)
	_, err := s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, k, 0, skuID)
		p.LPush(ctx, k, skuID)
		p.LTrim(ctx, k, 0, Limit-1)
		return nil
	})
	return err
}

func (s *Store) List(ctx context.Context, userID int64) ([]int64, error) {
	raw, err := s.Redis.LRange(ctx, key(userID), 0, Limit-1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("history %s: bad sku %q", key(userID), v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
