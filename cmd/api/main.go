package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	loadEnvFiles()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("cannot open %s store: %v", cfg.Backend, err)
	}
	defer closeStore()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, bookStore),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting server addr=%s backend=%s", cfg.Addr, cfg.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("shutting down server")
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server stopped with error: %v", err)
		closeStore()
		os.Exit(1)
	}
	log.Println("server stopped")
}

// openStore builds the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg config) (book.Store, func(), error) {
	switch cfg.Backend {
	case backendPostgres:
		pool, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return store.NewBookPG(pool, cfg.DBTimeout), pool.Close, nil
	case backendSQLite:
		s, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("sqlite database ready path=%s", cfg.SQLitePath)
		return s, func() { _ = s.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool, nil
}
