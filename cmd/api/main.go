package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/address"
	"github.com/ariefcatur/go-realtime-checkout/internal/cart"
	"github.com/ariefcatur/go-realtime-checkout/internal/catalog"
	"github.com/ariefcatur/go-realtime-checkout/internal/config"
	"github.com/ariefcatur/go-realtime-checkout/internal/history"
	"github.com/ariefcatur/go-realtime-checkout/internal/httpx"
	kafkax "github.com/ariefcatur/go-realtime-checkout/internal/kafka"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/ariefcatur/go-realtime-checkout/internal/postgres"
	"github.com/ariefcatur/go-realtime-checkout/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.PostgresConns))
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: order.placed & cart.cleanup.requested
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	placed.Start()
	cleanup := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicCartCleanup, 1024)
	cleanup.Start()

	// Services & handlers
	carts := &cart.Store{Redis: rdb}
	reader := &orders.Repo{DB: db}
	addresses := &address.Repo{DB: db}
	svc := &orders.Service{
		Cart:         carts,
		Tx:           &orders.PgTxManager{DB: db},
		Reader:       reader,
		Events:       placed,
		CleanupQueue: cleanup,
		Freight:      cfg.Freight,
		ServiceName:  cfg.ServiceName,
	}

	router := httpx.NewRouter(cfg.RequestTimeout)
	(&httpx.CatalogHandler{SKUs: &catalog.Repo{DB: db}}).Register(router)
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireUser)
		(&httpx.OrdersHandler{
			Orders:    svc,
			Addresses: addresses,
			Redis:     rdb,
			Timeout:   cfg.RequestTimeout,
		}).Register(r)
		(&httpx.CartHandler{Cart: carts, SKUs: reader, Timeout: cfg.RequestTimeout}).Register(r)
		(&httpx.AddressHandler{Addresses: addresses, Timeout: cfg.RequestTimeout}).Register(r)
		(&httpx.HistoryHandler{History: &history.Store{Redis: rdb}, SKUs: reader, Timeout: cfg.RequestTimeout}).Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		// handler yang masih jalan bisa Publish setelah Close; producer akan drop + log
		log.Printf("http shutdown: %v", err)
	}

	// flush sisa buffer & close writer
	placed.Close()
	cleanup.Close()
	placed.WaitClosed()
	cleanup.WaitClosed()
}
