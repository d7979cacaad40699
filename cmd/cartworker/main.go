package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/cart"
	"github.com/ariefcatur/go-realtime-checkout/internal/cartsync"
	"github.com/ariefcatur/go-realtime-checkout/internal/config"
	kafkax "github.com/ariefcatur/go-realtime-checkout/internal/kafka"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/ariefcatur/go-realtime-checkout/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: request yang gagal dikembalikan ke topic yang sama
	requeue := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicCartCleanup, 256)
	requeue.Start()

	svc := &cartsync.Service{
		Cart:        &cart.Store{Redis: rdb},
		Redis:       rdb,
		Attempts:    5,
		Backoff:     200 * time.Millisecond,
		Requeue:     requeue,
		MaxRequeues: 10,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.CartWorkerGroup, orders.TopicCartCleanup, cfg.CartWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("cart worker started: group=%s topic=%s workers=%d", cfg.CartWorkerGroup, orders.TopicCartCleanup, cfg.CartWorkers)
		if err := cons.Start(ctx, svc.HandleCleanupRequested); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	<-done
	requeue.Close()
	requeue.WaitClosed()
}
