package kafka

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in memory and hands them to an async writer in
// batches. Publish never blocks: when the buffer is full or the producer is
// closed the message is dropped and logged.
type Producer struct {
	w     messageWriter
	topic string
	inbox chan kafka.Message
	done  chan struct{}

	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	dropped atomic.Int64
}

const maxBatch = 100

func NewProducer(brokers []string, topic string, buf int) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true, // fire-and-forget untuk throughput; error dicatat di Completion
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Printf("[kafka] async write topic=%s msgs=%d: %v", topic, len(msgs), err)
			}
		},
	}
	return newProducer(w, topic, buf)
}

func newProducer(w messageWriter, topic string, buf int) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:     w,
		topic: topic,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.done)
		batch := make([]kafka.Message, 0, maxBatch)
		for m := range p.inbox {
			batch = append(batch[:0], m)
			// ambil sisa yang sudah antre, tanpa menunggu
		drain:
			for len(batch) < maxBatch {
				select {
				case next, ok := <-p.inbox:
					if !ok {
						break drain
					}
					batch = append(batch, next)
				default:
					break drain
				}
			}
			if err := p.w.WriteMessages(context.Background(), batch...); err != nil {
				log.Printf("[kafka] write topic=%s msgs=%d: %v", p.topic, len(batch), err)
			}
		}
		if err := p.w.Close(); err != nil {
			log.Printf("[kafka] close writer topic=%s: %v", p.topic, err)
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.drop(m, "producer closed")
		return
	}
	select {
	case p.inbox <- m:
	default:
		p.drop(m, "buffer full")
	}
}

func (p *Producer) drop(m kafka.Message, reason string) {
	p.dropped.Add(1)
	log.Printf("[kafka] drop topic=%s key=%s: %s", p.topic, m.Key, reason)
}

// Dropped counts messages Publish could not buffer.
func (p *Producer) Dropped() int64 { return p.dropped.Load() }

// Close stops accepting messages; buffered ones are still flushed.
func (p *Producer) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
	})
}

// WaitClosed blocks until the buffer is flushed and the writer closed.
func (p *Producer) WaitClosed() { <-p.done }
