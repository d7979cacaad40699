package orderstest

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
)

// Cart is an in-memory orders.CartStore.
type Cart struct {
	mu       sync.Mutex
	counts   map[int64]map[int64]int
	selected map[int64]map[int64]bool

	RemoveErr error
}

func NewCart() *Cart {
	return &Cart{counts: map[int64]map[int64]int{}, selected: map[int64]map[int64]bool{}}
}

func (c *Cart) Put(userID, skuID int64, count int, selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[userID] == nil {
		c.counts[userID] = map[int64]int{}
		c.selected[userID] = map[int64]bool{}
	}
	c.counts[userID][skuID] = count
	if selected {
		c.selected[userID][skuID] = true
	}
}

// Select marks skuID selected without touching counts.
func (c *Cart) Select(userID, skuID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected[userID] == nil {
		c.selected[userID] = map[int64]bool{}
	}
	c.selected[userID][skuID] = true
}

func (c *Cart) SelectedSKUIDs(ctx context.Context, userID int64) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.selected[userID]))
	for id := range c.selected[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Cart) Quantities(ctx context.Context, userID int64) (map[int64]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int64]int, len(c.counts[userID]))
	for id, n := range c.counts[userID] {
		out[id] = n
	}
	return out, nil
}

func (c *Cart) RemoveEntries(ctx context.Context, userID int64, skuIDs []int64) error {
	if c.RemoveErr != nil {
		return c.RemoveErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range skuIDs {
		delete(c.counts[userID], id)
		delete(c.selected[userID], id)
	}
	return nil
}

func (c *Cart) Len(userID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.counts[userID])
}

// Publisher records published messages.
type Publisher struct {
	mu       sync.Mutex
	Messages []kafkago.Message
}

func (p *Publisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, kafkago.Message{Key: key, Value: value, Headers: headers})
}

func (p *Publisher) Sent() []kafkago.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafkago.Message(nil), p.Messages...)
}
