// Package web assembles the HTTP API: the fiber app, its middleware
// stack, and the route table.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/services"
	"github.com/collectorsden/shelftrack/internal/web/handlers"
	"github.com/collectorsden/shelftrack/internal/web/middleware"
	webmodels "github.com/collectorsden/shelftrack/internal/web/models"
)

const shutdownTimeout = 15 * time.Second

// App is the assembled HTTP server.
type App struct {
	cfg    *config.Config
	fiber  *fiber.App
	webApp *handlers.WebApp
}

// New builds the fiber app with its services, middleware and routes.
// Photo endpoints are mounted only when object storage is configured.
func New(cfg *config.Config, db *database.DB, version string) (*App, error) {
	webApp := &handlers.WebApp{
		Config:  cfg,
		DB:      db,
		Items:   services.NewItemService(db),
		Stats:   services.NewStatsService(db),
		Search:  services.NewSearchService(db),
		Dedupe:  services.NewDedupeService(db),
		Lookups: services.NewLookupService(db),
		Version: version,
	}
	if cfg.Spaces.Enabled() {
		photos, err := services.NewPhotoService(db, cfg.Spaces)
		if err != nil {
			return nil, fmt.Errorf("failed to set up photo storage: %w", err)
		}
		webApp.Photos = photos
	}

	app := fiber.New(fiber.Config{
		AppName:      "Shelftrack API",
		ServerHeader: "Shelftrack",
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(corsConfig(cfg.Web)))
	app.Use(middleware.RequestLogger())

	setupRoutes(app, webApp)

	return &App{cfg: cfg, fiber: app, webApp: webApp}, nil
}

func corsConfig(cfg config.WebConfig) cors.Config {
	origins := cfg.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		// Credentials cannot be combined with a wildcard origin.
		AllowCredentials: origins != "*",
	}
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Shelftrack API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	api := app.Group("/api")
	api.Get("/items", handlers.ItemsList(webApp))
	api.Get("/items/:id", handlers.ItemsDetail(webApp))
	api.Get("/collection/overview", handlers.CollectionOverview(webApp))
	api.Get("/collections", handlers.CollectionsList(webApp))
	api.Get("/imports", handlers.ImportsView(webApp))
	api.Get("/search", handlers.SearchAPI(webApp))
	api.Get("/characters/:id/items", handlers.CharacterItems(webApp))
	api.Get("/lookups", handlers.LookupsList(webApp))
	api.Get("/dashboard/stats", handlers.DashboardStats(webApp))

	admin := app.Group("/admin")
	admin.Post("/items", handlers.ItemsCreate(webApp))
	admin.Put("/items/:id", handlers.ItemsUpdate(webApp))
	admin.Delete("/items/:id", handlers.ItemsDelete(webApp))
	admin.Post("/items/:id/purchases", handlers.PurchasesCreate(webApp))
	admin.Delete("/purchases/:id", handlers.PurchasesDelete(webApp))
	admin.Post("/items/deduplicate", handlers.ItemsDeduplicate(webApp))
	admin.Post("/collections", handlers.CollectionsCreate(webApp))

	if webApp.Photos != nil {
		admin.Post("/items/:id/photo", handlers.PhotosUpload(webApp))
		admin.Delete("/photos/:id", handlers.PhotosDelete(webApp))
	}

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched",
			slog.String("type", "web"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)
		return c.Status(fiber.StatusNotFound).
			JSON(webmodels.NewErrorResponse("NOT_FOUND", "The requested endpoint does not exist", nil))
	})
}

// Run starts the server and blocks until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *App) Run() error {
	address := fmt.Sprintf(":%d", a.cfg.Web.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting web server",
			slog.String("type", "web"),
			slog.String("address", address),
		)
		errCh <- a.fiber.Listen(address)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-sig:
	}

	slog.Info("Shutting down web server", slog.String("type", "web"))
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.fiber.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Fiber exposes the underlying app for tests.
func (a *App) Fiber() *fiber.App {
	return a.fiber
}
