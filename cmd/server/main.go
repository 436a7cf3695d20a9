package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/cache"
	"github.com/dennisyang0219/lunch-water/internal/config"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/dennisyang0219/lunch-water/internal/router"
	"github.com/dennisyang0219/lunch-water/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	var c cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		c = cache.NewRedis(cfg.RedisAddr)
		log.Printf("Using redis cache at %s", cfg.RedisAddr)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	pub := events.Multi{hub}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, events.DefaultExchange)
		if err != nil {
			log.Fatalf("Unable to connect to message broker: %v", err)
		}
		defer amqpPub.Close()
		pub = append(pub, amqpPub)
		log.Printf("Publishing events to exchange %s", events.DefaultExchange)
	}

	r := router.New(cfg, database.New(pool), pool, c, hub, pub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s (timezone %s, default cutoff %s)", cfg.Port, cfg.Location(), cfg.Cutoff())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
