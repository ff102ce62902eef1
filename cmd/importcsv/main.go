package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/importer"
	"github.com/collectorsden/shelftrack/internal/logger"
)

func main() {
	logger.Setup("info")

	path := flag.String("config", "", "path to config (defaults to $SHELFTRACK_CONFIG, then ./config.toml)")
	file := flag.String("file", "", "path to the CSV file to import")
	owner := flag.String("owner", "", "owner id stamped on every imported item")
	currency := flag.String("currency", "", "currency for purchases without one (defaults to the configured import default)")
	dryRun := flag.Bool("dry-run", false, "parse and count without writing anything")
	allowFallbackDB := flag.Bool("allow-fallback-db", false, "permit importing into the built-in development database")
	flag.Parse()

	if *file == "" {
		slog.Error("Missing required flag", slog.String("flag", "-file"))
		flag.Usage()
		os.Exit(-1)
	}

	cfg, err := config.LoadOrDefault(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	logger.Setup(cfg.Log.Level)

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

	result, err := importer.NewImporter(cfg, db).Run(ctx, importer.Options{
		File:            *file,
		Owner:           *owner,
		DefaultCurrency: *currency,
		DryRun:          *dryRun,
		AllowFallbackDB: *allowFallbackDB,
	})
	if err != nil {
		attrs := []any{slog.String("type", "import"), slog.Any("error", err)}
		if result != nil {
			// A mid-file failure keeps the rows already written.
			attrs = append(attrs,
				slog.String("batch_id", result.BatchID),
				slog.Int("rows_read", result.RowsRead),
				slog.Int("items_created", result.ItemsCreated))
		}
		slog.Error("Import failed", attrs...)
		os.Exit(-1)
	}

	slog.Info("Import completed successfully",
		slog.String("type", "import"),
		slog.String("batch_id", result.BatchID),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("items_created", result.ItemsCreated),
		slog.Int("purchases_created", result.PurchasesCreated),
		slog.Int("rows_skipped", result.RowsSkipped),
		slog.Bool("dry_run", *dryRun))
}
