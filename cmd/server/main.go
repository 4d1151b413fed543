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

	"github.com/heladeria-pos/api/internal/catsync"
	"github.com/heladeria-pos/api/internal/config"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/handler"
	"github.com/heladeria-pos/api/internal/printer"
	"github.com/heladeria-pos/api/internal/router"
	"github.com/heladeria-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: load .env: %v", err)
	}

	cfg := config.Load()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	log.Println("Migrations applied")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	// Printing gateway is optional; without AMQP_URL tickets are simply
	// not printed.
	var pub handler.TicketPublisher
	if cfg.AMQPURL != "" {
		p, err := printer.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("connect to broker: %v", err)
		}
		defer p.Close()
		pub = p
		log.Println("Connected to printing broker")
	}

	var hook catsync.Hook = catsync.Noop{}
	if cfg.CategoriesDir != "" {
		mirror, err := catsync.NewFolderMirror(cfg.CategoriesDir)
		if err != nil {
			log.Fatalf("categories dir: %v", err)
		}
		hook = mirror
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(cfg, queries, pool, hub, pub, hook),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
