package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	dbmodels "github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
	"github.com/collectorsden/shelftrack/internal/services"
	webmodels "github.com/collectorsden/shelftrack/internal/web/models"
	"github.com/collectorsden/shelftrack/internal/web/utils"
)

// WebApp bundles the dependencies every handler needs.
type WebApp struct {
	Config  *config.Config
	DB      *database.DB
	Items   *services.ItemService
	Stats   *services.StatsService
	Search  *services.SearchService
	Dedupe  *services.DedupeService
	Lookups *services.LookupService
	Photos  *services.PhotoService
	Version string
}

// PhotoURL renders a photo's public URL, or nothing when object
// storage is not configured.
func (w *WebApp) PhotoURL(photo *dbmodels.ItemPhoto) string {
	if w.Photos == nil {
		return ""
	}
	return w.Photos.URL(photo)
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version)

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		if err := webApp.DB.Ping(ctx); err != nil {
			health.AddComponent("database", "unhealthy", err.Error())
		} else {
			health.AddComponent("database", "healthy", "")
		}

		status := fiber.StatusOK
		if health.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(webmodels.NewSuccessResponse(health, "Health check"))
	}
}

func ItemsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		filters := repositories.ItemFilters{
			Query:    c.Query("q"),
			Status:   c.Query("status"),
			Company:  c.Query("company"),
			Owner:    c.Query("owner"),
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("page_size", repositories.DefaultPageSize),
		}
		filters.Normalize()

		items, total, err := webApp.Items.List(ctx, filters)
		if err != nil {
			slog.Error("Failed to list items", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list items")
		}

		summaries := make([]webmodels.ItemSummary, 0, len(items))
		for _, item := range items {
			summaries = append(summaries, webmodels.NewItemSummary(item))
		}

		meta := webmodels.NewPageMeta(filters.Page, filters.PageSize, total)
		return utils.SendPaginated(c, summaries, meta, "Items retrieved")
	}
}

func ItemsDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid item ID", nil)
		}

		item, err := webApp.Items.Get(ctx, id)
		if err != nil {
			if errors.Is(err, services.ErrItemNotFound) {
				return utils.SendNotFound(c, "Item not found")
			}
			slog.Error("Failed to load item",
				slog.Int64("item_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to load item")
		}

		return utils.SendSuccess(c, webmodels.NewItemDetail(item, webApp.PhotoURL), "Item retrieved")
	}
}

func ItemsCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req webmodels.ItemRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}
		if errs := utils.ValidateItemRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		item, err := webApp.Items.Create(ctx, req.ToInput())
		if err != nil {
			slog.Error("Failed to create item",
				slog.String("name", req.Name),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to create item")
		}

		return utils.SendCreated(c, webmodels.NewItemDetail(item, webApp.PhotoURL), "Item created")
	}
}

func ItemsUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid item ID", nil)
		}

		var req webmodels.ItemRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}
		if errs := utils.ValidateItemRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		item, err := webApp.Items.Update(ctx, id, req.ToInput())
		if err != nil {
			if errors.Is(err, services.ErrItemNotFound) {
				return utils.SendNotFound(c, "Item not found")
			}
			slog.Error("Failed to update item",
				slog.Int64("item_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to update item")
		}

		return utils.SendSuccess(c, webmodels.NewItemDetail(item, webApp.PhotoURL), "Item updated")
	}
}

func ItemsDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid item ID", nil)
		}

		if err := webApp.Items.Delete(ctx, id); err != nil {
			if errors.Is(err, services.ErrItemNotFound) {
				return utils.SendNotFound(c, "Item not found")
			}
			slog.Error("Failed to delete item",
				slog.Int64("item_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to delete item")
		}

		return utils.SendSuccess(c, fiber.Map{"id": id}, "Item deleted")
	}
}

func PurchasesCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		itemID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid item ID", nil)
		}

		var req webmodels.PurchaseRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}
		if errs := utils.ValidatePurchaseRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		purchase, err := webApp.Items.AddPurchase(ctx, itemID, req.ToInput())
		if err != nil {
			if errors.Is(err, services.ErrItemNotFound) {
				return utils.SendNotFound(c, "Item not found")
			}
			slog.Error("Failed to record purchase",
				slog.Int64("item_id", itemID),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to record purchase")
		}

		return utils.SendCreated(c, webmodels.NewPurchaseView(purchase), "Purchase recorded")
	}
}

func PurchasesDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid purchase ID", nil)
		}

		if err := webApp.Items.DeletePurchase(ctx, id); err != nil {
			if errors.Is(err, services.ErrPurchaseNotFound) {
				return utils.SendNotFound(c, "Purchase not found")
			}
			slog.Error("Failed to delete purchase",
				slog.Int64("purchase_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to delete purchase")
		}

		return utils.SendSuccess(c, fiber.Map{"id": id}, "Purchase deleted")
	}
}

func PhotosUpload(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		itemID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid item ID", nil)
		}

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return utils.SendBadRequest(c, "A photo file is required", nil)
		}
		if errs := utils.ValidateImageFile(fileHeader); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return utils.SendBadRequest(c, "Failed to open uploaded file", nil)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return utils.SendBadRequest(c, "Failed to read uploaded file", nil)
		}

		photo, err := webApp.Photos.Upload(ctx, itemID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrItemNotFound):
				return utils.SendNotFound(c, "Item not found")
			case errors.Is(err, services.ErrPhotoTooLarge),
				errors.Is(err, services.ErrPhotoUnsupportedType):
				return utils.SendBadRequest(c, err.Error(), nil)
			}
			slog.Error("Failed to upload photo",
				slog.Int64("item_id", itemID),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to upload photo")
		}

		return utils.SendCreated(c, webmodels.PhotoView{
			ID:          photo.ID,
			URL:         webApp.PhotoURL(photo),
			ContentType: photo.ContentType,
			Size:        photo.Size,
			CreatedAt:   photo.CreatedAt,
		}, "Photo uploaded")
	}
}

func PhotosDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid photo ID", nil)
		}

		if err := webApp.Photos.Delete(ctx, id); err != nil {
			if errors.Is(err, services.ErrPhotoNotFound) {
				return utils.SendNotFound(c, "Photo not found")
			}
			slog.Error("Failed to delete photo",
				slog.Int64("photo_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to delete photo")
		}

		return utils.SendSuccess(c, fiber.Map{"id": id}, "Photo deleted")
	}
}

func ItemsDeduplicate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		result, err := webApp.Dedupe.Deduplicate(ctx, c.Query("owner"))
		if err != nil {
			slog.Error("Failed to deduplicate items", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to deduplicate items")
		}

		return utils.SendSuccess(c, result, "Deduplication finished")
	}
}

func CollectionOverview(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		overview, err := webApp.Stats.Overview(ctx, c.Query("owner"))
		if err != nil {
			slog.Error("Failed to build collection overview", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to build collection overview")
		}

		return utils.SendSuccess(c, fiber.Map{
			"overview":        overview,
			"rendered_totals": overview.RenderedTotals(),
		}, "Overview built")
	}
}

func ImportsView(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		items, err := repositories.NewItemRepository(webApp.DB.BunDB()).GetImported(ctx)
		if err != nil {
			slog.Error("Failed to load imported items", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to load imported items")
		}

		views := make([]webmodels.ImportedItemView, 0, len(items))
		for _, item := range items {
			view := webmodels.ImportedItemView{
				ItemSummary: webmodels.NewItemSummary(item),
				ImportBatch: item.ImportBatch(),
				Purchases:   make([]webmodels.PurchaseView, 0, len(item.Purchases)),
			}
			for _, purchase := range item.Purchases {
				view.Purchases = append(view.Purchases, webmodels.NewPurchaseView(purchase))
			}
			views = append(views, view)
		}

		return utils.SendSuccess(c, fiber.Map{
			"items": views,
			"total": len(views),
			"empty": len(views) == 0,
		}, "Imported items retrieved")
	}
}

func SearchAPI(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		query := c.Query("q")
		results, err := webApp.Search.Search(ctx, query, c.QueryInt("limit", 0))
		if err != nil {
			slog.Error("Search failed",
				slog.String("query", query),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Search failed")
		}

		return utils.SendSuccess(c, fiber.Map{
			"query":   query,
			"results": results,
			"total":   len(results),
		}, "Search finished")
	}
}

func CharacterItems(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid character ID", nil)
		}

		characterRepo := repositories.NewCharacterRepository(webApp.DB.BunDB())
		character, err := characterRepo.GetByID(ctx, id)
		if err != nil {
			slog.Error("Failed to load character",
				slog.Int64("character_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to load character")
		}
		if character == nil {
			return utils.SendNotFound(c, "Character not found")
		}

		items, err := characterRepo.GetItems(ctx, id)
		if err != nil {
			slog.Error("Failed to load character items",
				slog.Int64("character_id", id),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to load character items")
		}

		summaries := make([]webmodels.ItemSummary, 0, len(items))
		for _, item := range items {
			summaries = append(summaries, webmodels.NewItemSummary(item))
		}

		return utils.SendSuccess(c, fiber.Map{
			"character": webmodels.NewCharacterView(character),
			"items":     summaries,
			"total":     len(summaries),
		}, "Character items retrieved")
	}
}

func CollectionsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		idb := webApp.DB.BunDB()
		collections, err := repositories.NewCollectionRepository(idb).GetAll(ctx, c.Query("owner"))
		if err != nil {
			slog.Error("Failed to list collections", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list collections")
		}
		counts, err := repositories.NewPurchaseRepository(idb).CountByCollection(ctx)
		if err != nil {
			slog.Error("Failed to count collection purchases", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list collections")
		}

		views := make([]webmodels.CollectionView, 0, len(collections))
		for _, collection := range collections {
			views = append(views, webmodels.NewCollectionView(collection, counts[collection.ID]))
		}

		return utils.SendSuccess(c, fiber.Map{
			"collections": views,
			"total":       len(views),
		}, "Collections retrieved")
	}
}

func CollectionsCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req webmodels.CollectionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}
		if errs := utils.ValidateCollectionRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		idb := webApp.DB.BunDB()
		collection, err := repositories.NewCollectionRepository(idb).GetOrCreate(ctx, req.Name, req.Owner)
		if err != nil {
			slog.Error("Failed to create collection",
				slog.String("name", req.Name),
				slog.String("error", err.Error()),
			)
			return utils.SendInternalServerError(c, "Failed to create collection")
		}

		counts, err := repositories.NewPurchaseRepository(idb).CountByCollection(ctx)
		if err != nil {
			slog.Error("Failed to count collection purchases", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create collection")
		}

		return utils.SendCreated(c, webmodels.NewCollectionView(collection, counts[collection.ID]), "Collection created")
	}
}

func LookupsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lookups, err := webApp.Lookups.Lists(c.Context())
		if err != nil {
			slog.Error("Failed to load lookups", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to load lookups")
		}

		return utils.SendSuccess(c, lookups, "Lookups retrieved")
	}
}

func DashboardStats(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		stats, err := webApp.Stats.Dashboard(ctx)
		if err != nil {
			slog.Error("Failed to build dashboard stats", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to build dashboard stats")
		}

		return utils.SendSuccess(c, stats, "Dashboard stats retrieved")
	}
}
