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
	"github.com/collectorsden/shelftrack/internal/migration"
)

func main() {
	logger.Setup("info")

	path := flag.String("config", "", "path to config (defaults to $SHELFTRACK_CONFIG, then ./config.toml)")
	batchSize := flag.Int("batch-size", 0, "source fetch batch size (overrides config when > 0)")
	workers := flag.Int("workers", 0, "concurrent item writers (overrides config when > 0)")
	dryRun := flag.Bool("dry-run", false, "fetch and convert without writing anything")
	reset := flag.Bool("reset", false, "truncate all application tables before migrating")
	flag.Parse()

	if *reset && *dryRun {
		slog.Error("-reset cannot be combined with -dry-run")
		os.Exit(-1)
	}

	cfg, err := config.LoadOrDefault(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	logger.Setup(cfg.Log.Level)

	if *batchSize > 0 {
		cfg.Migration.BatchSize = *batchSize
	}
	if *workers > 0 {
		cfg.Migration.Workers = *workers
	}
	if cfg.Migration.MongoURI == "" || cfg.Migration.MongoDatabase == "" {
		slog.Error("Migration source is not configured",
			slog.String("hint", "set migration.mongo_uri and migration.mongo_database in the config"))
		os.Exit(-1)
	}

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

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}

	if *reset {
		if err := db.ResetAppTables(ctx); err != nil {
			slog.Error("Failed to reset application tables", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	client, err := migration.Connect(ctx, cfg.Migration)
	if err != nil {
		slog.Error("Failed to connect to migration source",
			slog.String("type", "import"),
			slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("Failed to disconnect from migration source", slog.Any("error", err))
		}
	}()

	migrator := migration.NewMigrator(db, client.Database(cfg.Migration.MongoDatabase), cfg.Migration)
	migrator.SetDryRun(*dryRun)

	stats, err := migrator.Run(ctx)
	if err != nil {
		slog.Error("Migration failed", slog.String("type", "import"), slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Migration completed successfully",
		slog.String("type", "import"),
		slog.Int("characters_migrated", stats.Characters.Migrated),
		slog.Int("items_migrated", stats.Items.Migrated),
		slog.Int("links_migrated", stats.Links.Migrated),
		slog.Int("purchases_migrated", stats.Purchases.Migrated),
		slog.Int("items_skipped", stats.Items.Skipped),
		slog.Duration("took", stats.Duration()),
		slog.Bool("dry_run", *dryRun))
}
