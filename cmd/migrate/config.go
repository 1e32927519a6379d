package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func loadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// dialectFor maps a STORE_BACKEND value to a goose dialect.
func dialectFor(backend string) (goose.Dialect, bool) {
	switch backend {
	case "", "postgres":
		return goose.DialectPostgres, true
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, true
	default:
		return "", false
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
