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
	file := flag.String("file", "", "path to a TOML or YAML seed file")
	builtin := flag.Bool("builtin", false, "load the built-in starter dataset")
	flag.Parse()

	if *file == "" && !*builtin {
		slog.Error("Either -file or -builtin is required")
		flag.Usage()
		os.Exit(-1)
	}
	if *file != "" && *builtin {
		slog.Error("-file and -builtin are mutually exclusive")
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

	seeder := importer.NewSeeder(db)

	var result *importer.SeedResult
	if *builtin {
		result, err = seeder.SeedBuiltin(ctx)
	} else {
		result, err = seeder.SeedPath(ctx, *file)
	}
	if err != nil {
		slog.Error("Seeding failed", slog.String("type", "import"), slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Seeding completed successfully",
		slog.String("type", "import"),
		slog.Int("factions", result.Factions),
		slog.Int("companies", result.Companies),
		slog.Int("lines", result.Lines),
		slog.Int("series", result.Series),
		slog.Int("types", result.Types),
		slog.Int("categories", result.Categories),
		slog.Int("vendors", result.Vendors),
		slog.Int("teams", result.Teams),
		slog.Int("characters", result.Characters))
}
