package cartsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-realtime-checkout/internal/kafka"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/ariefcatur/go-realtime-checkout/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Remover interface {
	RemoveEntries(ctx context.Context, userID int64, skuIDs []int64) error
}

// HeaderRetry counts how often a cleanup request went back to the topic.
const HeaderRetry = "x-retry"

// Service finishes cart cleanups that the api could not do right after an
// order was committed.
type Service struct {
	Cart     Remover
	Redis    redis.Cmdable
	Attempts int
	Backoff  time.Duration

	// Requeue receives requests whose attempts ran out, up to MaxRequeues
	// times per request. Kafka offsets are cumulative, so a message that is
	// simply left uncommitted would be skipped by the next commit.
	Requeue     orders.Publisher
	MaxRequeues int
}

// HandleCleanupRequested dipasang sebagai handler consumer.
func (s *Service) HandleCleanupRequested(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventCartCleanupRequested {
		return nil
	}

	// 2) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, "cart", env.EventID)
	if done, _ := redisx.Exists(ctx, s.Redis, dkey); done {
		return nil
	}

	// 3) decode payload
	p, err := kafkax.UnwrapPayload[orders.CartCleanupPayload](env.Payload)
	if err != nil {
		return err
	}

	// 4) hapus entry, retry dengan backoff
	if err := s.remove(ctx, p); err != nil {
		err = fmt.Errorf("cart cleanup order=%s user=%d: %w", p.OrderID, p.UserID, err)
		return s.requeue(m, err)
	}

	// tandai selesai hanya setelah sukses, supaya redelivery tetap diproses
	if _, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
		log.Printf("[cartsync] dedup mark event=%s: %v", env.EventID, err)
	}
	log.Printf("[cartsync] cleaned cart user=%d order=%s skus=%v", p.UserID, p.OrderID, p.SKUIDs)
	return nil
}

func (s *Service) remove(ctx context.Context, p orders.CartCleanupPayload) error {
	attempts := s.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	wait := s.Backoff

	var err error
	for i := 0; i < attempts; i++ {
		if err = s.Cart.RemoveEntries(ctx, p.UserID, p.SKUIDs); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

// requeue puts m back on the topic with its retry counter bumped. It returns
// nil when the message was handed over, so the consumer commits past it.
func (s *Service) requeue(m kafkago.Message, cause error) error {
	n := retries(m.Headers) + 1
	if s.Requeue == nil || n > s.MaxRequeues {
		log.Printf("[cartsync] giving up after %d requeues: %v", n-1, cause)
		return cause
	}

	headers := make([]kafkago.Header, 0, len(m.Headers)+1)
	for _, h := range m.Headers {
		if h.Key != HeaderRetry {
			headers = append(headers, h)
		}
	}
	headers = append(headers, kafkago.Header{Key: HeaderRetry, Value: []byte(strconv.Itoa(n))})
	s.Requeue.Publish(m.Key, m.Value, headers...)
	log.Printf("[cartsync] requeued (retry %d): %v", n, cause)
	return nil
}

func retries(headers []kafkago.Header) int {
	for _, h := range headers {
		if h.Key == HeaderRetry {
			n, _ := strconv.Atoi(string(h.Value))
			return n
		}
	}
	return 0
}
