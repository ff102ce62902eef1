package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/logger"
	"github.com/collectorsden/shelftrack/internal/web"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	logger.Setup("info")

	slog.Info("Starting Shelftrack server",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "", "path to config (defaults to $SHELFTRACK_CONFIG, then ./config.toml)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	logger.Setup(cfg.Log.Level)
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	app, err := web.New(cfg, db, version)
	if err != nil {
		slog.Error("Failed to build web application",
			slog.String("type", "web"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	if err := app.Run(); err != nil {
		slog.Error("Server exited with error",
			slog.String("type", "web"),
			slog.Any("error", err))
		os.Exit(-1)
	}
}
