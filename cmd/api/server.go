package main

import (
	"context"
	"net/http"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter wires the book routes, probes and middleware around store.
func newRouter(cfg config, store book.Store) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				httpx.JSONError(w, r, http.StatusServiceUnavailable, "store not ready", nil)
				return
			}
		}
		_, _ = w.Write([]byte("ready"))
	})

	book.NewHTTPHandler(book.NewService(store)).Register(mux)

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
	}
	if cfg.RateLimitRPS > 0 {
		mws = append(mws, httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware)
	}
	if cfg.MaxBodyBytes > 0 {
		mws = append(mws, httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	}
	return httpx.Chain(mux, mws...)
}
