package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PoojaKamatchi/keva/internal/cart"
	"github.com/PoojaKamatchi/keva/internal/catalog"
	"github.com/PoojaKamatchi/keva/internal/checkout"
	"github.com/PoojaKamatchi/keva/internal/config"
	"github.com/PoojaKamatchi/keva/internal/events"
	"github.com/PoojaKamatchi/keva/internal/httpx"
	kafkax "github.com/PoojaKamatchi/keva/internal/kafka"
	"github.com/PoojaKamatchi/keva/internal/order"
	"github.com/PoojaKamatchi/keva/internal/postgres"
	"github.com/PoojaKamatchi/keva/internal/redisx"
	"github.com/PoojaKamatchi/keva/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("db schema: %v", err)
	}
	db := postgres.DB{Pool: pool}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024)
	pPlaced.Start()
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCancelled, 1024)
	pCancelled.Start()

	// Core wiring
	ledger := &stock.Ledger{DB: db}
	carts := &cart.Store{DB: db, Ledger: ledger}
	repo := &order.Repo{DB: db, Ledger: ledger, Carts: checkout.CartSource{Store: carts}}
	coord := &checkout.Coordinator{
		Carts:             carts,
		Orders:            &order.Lifecycle{Repo: repo},
		Redis:             rdb,
		PlacedProducer:    pPlaced,
		CancelledProducer: pCancelled,
		Service:           cfg.ServiceName,
	}

	router := httpx.NewRouter()
	(&httpx.CartHandler{Carts: coord}).Register(router)
	(&httpx.OrdersHandler{Orders: coord}).Register(router)
	(&httpx.CatalogHandler{Catalog: &catalog.Repo{DB: db}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close()
	pCancelled.Close()
	pPlaced.WaitClosed()
	pCancelled.WaitClosed()
}
