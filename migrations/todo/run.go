package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/todoreminder/pkg/config"
	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg).With("context", "todo")

	n, err := migrator.Up(context.Background(), cfg.DatabaseURL, MigrationsFS, "goose_todo_version", log)
	if err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("todo migrations applied", "count", n)
}
