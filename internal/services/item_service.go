package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/characters"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/dbutil"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
)

// ItemInput carries one create or update payload. Classification fields
// are free-text names resolved through the shared resolve-or-create
// contract; empty names detach the item from that classification.
type ItemInput struct {
	Name      string
	SKU       string
	Version   string
	Year      *int
	Scale     string
	Condition string
	Status    string
	Location  string
	URL       string
	Notes     string

	Company  string
	Line     string
	Series   string
	ItemType string
	Category string

	// Characters is the free-text character list. Nil leaves the
	// current links untouched; present-but-empty clears them.
	Characters *string
	// Faction backfills the faction of characters touched by this
	// write, when they have none yet.
	Faction string
	// Tags replaces the tag set when non-nil.
	Tags []string

	Owner       string
	ImportBatch string
}

// PurchaseInput carries one purchase payload. The vendor is a free-text
// name resolved through resolve-or-create.
type PurchaseInput struct {
	Vendor       string
	CollectionID *int64
	OrderDate    *time.Time
	PurchaseDate *time.Time
	ShipDate     *time.Time
	Price        *float64
	Tax          *float64
	Shipping     *float64
	Currency     string
	OrderNumber  string
	Quantity     int
	Notes        string
}

// HasData reports whether the input carries anything worth recording.
// Importers use it to decide whether a row gets a purchase at all.
func (p PurchaseInput) HasData() bool {
	return p.Vendor != "" ||
		p.OrderDate != nil || p.PurchaseDate != nil || p.ShipDate != nil ||
		p.Price != nil || p.Tax != nil || p.Shipping != nil ||
		p.Currency != "" || p.OrderNumber != ""
}

// ItemService orchestrates item writes. Every mutation that touches
// more than one table runs through the transaction manager so a failed
// step rolls the whole write back.
type ItemService struct {
	db *database.DB
	tm *dbutil.TransactionManager
}

func NewItemService(db *database.DB) *ItemService {
	return &ItemService{
		db: db,
		tm: dbutil.NewTransactionManager(db.BunDB()),
	}
}

// Get loads an item with its classification, links, tags, photos and
// purchases. Links come back in presentation order.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	item, err := repositories.NewItemRepository(s.db.BunDB()).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	characters.SortLinks(item.CharacterLinks)
	return item, nil
}

func (s *ItemService) List(ctx context.Context, filters repositories.ItemFilters) ([]*models.Item, int, error) {
	items, total, err := repositories.NewItemRepository(s.db.BunDB()).List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	for _, item := range items {
		characters.SortLinks(item.CharacterLinks)
	}
	return items, total, nil
}

// Create inserts a new item together with its classification, character
// links and tags, all in one transaction.
func (s *ItemService) Create(ctx context.Context, input ItemInput) (*models.Item, error) {
	return s.CreateWithPurchase(ctx, input, nil)
}

// CreateWithPurchase additionally records one purchase in the same
// transaction. Import rows use this so an item never lands without its
// purchase.
func (s *ItemService) CreateWithPurchase(ctx context.Context, input ItemInput, purchase *PurchaseInput) (*models.Item, error) {
	var created *models.Item
	err := s.tm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		item, err := s.createInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		if purchase != nil {
			if _, err := s.createPurchaseInTx(ctx, tx, item.ID, *purchase); err != nil {
				return err
			}
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Item created",
		slog.String("type", "db"),
		slog.Int64("item_id", created.ID),
		slog.String("name", created.Name),
	)
	return s.Get(ctx, created.ID)
}

// Update rewrites an item from the input, in one transaction. A nil
// Characters field leaves the link set untouched; a present-but-empty
// one clears it.
func (s *ItemService) Update(ctx context.Context, id int64, input ItemInput) (*models.Item, error) {
	err := s.tm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		items := repositories.NewItemRepository(tx)
		item, err := items.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			return ErrItemNotFound
		}

		item.Name = input.Name
		item.SKU = input.SKU
		item.Version = input.Version
		item.Year = input.Year
		item.Scale = input.Scale
		item.Condition = input.Condition
		item.Status = input.Status
		item.Location = input.Location
		item.URL = input.URL
		item.Notes = input.Notes
		if input.Owner != "" {
			if item.Extra == nil {
				item.Extra = map[string]interface{}{}
			}
			item.Extra[models.ExtraOwnerID] = input.Owner
		}

		if err := s.applyClassification(ctx, tx, item, input); err != nil {
			return err
		}
		if err := items.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		if input.Characters != nil {
			if err := s.syncCharactersInTx(ctx, tx, item.ID, *input.Characters, input.Faction); err != nil {
				return err
			}
		}
		if input.Tags != nil {
			if err := s.applyTags(ctx, tx, item.ID, input.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Item updated",
		slog.String("type", "db"),
		slog.Int64("item_id", id),
	)
	return s.Get(ctx, id)
}

// Delete removes an item and everything hanging off it.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	items := repositories.NewItemRepository(s.db.BunDB())
	item, err := items.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return ErrItemNotFound
	}
	if err := items.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	slog.Info("Item deleted",
		slog.String("type", "db"),
		slog.Int64("item_id", id),
		slog.String("name", item.Name),
	)
	return nil
}

// SyncCharacters replaces an item's character link set from the raw
// list, in its own transaction.
func (s *ItemService) SyncCharacters(ctx context.Context, itemID int64, raw string) ([]*models.ItemCharacter, error) {
	var links []*models.ItemCharacter
	err := s.tm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		out, err := characters.NewSyncer(
			repositories.NewCharacterRepository(tx),
			repositories.NewItemCharacterRepository(tx),
		).Sync(ctx, itemID, raw)
		if err != nil {
			return err
		}
		links = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// AddPurchase records a purchase against an existing item.
func (s *ItemService) AddPurchase(ctx context.Context, itemID int64, input PurchaseInput) (*models.Purchase, error) {
	var created *models.Purchase
	err := s.tm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		item, err := repositories.NewItemRepository(tx).GetByID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			return ErrItemNotFound
		}
		purchase, err := s.createPurchaseInTx(ctx, tx, itemID, input)
		if err != nil {
			return err
		}
		created = purchase
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Purchase recorded",
		slog.String("type", "db"),
		slog.Int64("item_id", itemID),
		slog.Int64("purchase_id", created.ID),
	)
	return created, nil
}

func (s *ItemService) GetPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	purchase, err := repositories.NewPurchaseRepository(s.db.BunDB()).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	return purchase, nil
}

func (s *ItemService) DeletePurchase(ctx context.Context, id int64) error {
	purchases := repositories.NewPurchaseRepository(s.db.BunDB())
	purchase, err := purchases.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase == nil {
		return ErrPurchaseNotFound
	}
	if err := purchases.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return nil
}

func (s *ItemService) createInTx(ctx context.Context, tx bun.Tx, input ItemInput) (*models.Item, error) {
	item := &models.Item{
		Name:      input.Name,
		SKU:       input.SKU,
		Version:   input.Version,
		Year:      input.Year,
		Scale:     input.Scale,
		Condition: input.Condition,
		Status:    input.Status,
		Location:  input.Location,
		URL:       input.URL,
		Notes:     input.Notes,
	}
	if item.Status == "" {
		item.Status = models.StatusOwned
	}
	if input.Owner != "" || input.ImportBatch != "" {
		item.Extra = map[string]interface{}{}
		if input.Owner != "" {
			item.Extra[models.ExtraOwnerID] = input.Owner
		}
		if input.ImportBatch != "" {
			item.Extra[models.ExtraImportBatch] = input.ImportBatch
		}
	}

	if err := s.applyClassification(ctx, tx, item, input); err != nil {
		return nil, err
	}
	if err := repositories.NewItemRepository(tx).Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	if input.Characters != nil {
		if err := s.syncCharactersInTx(ctx, tx, item.ID, *input.Characters, input.Faction); err != nil {
			return nil, err
		}
	}
	if input.Tags != nil {
		if err := s.applyTags(ctx, tx, item.ID, input.Tags); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// applyClassification resolves the five classification names onto the
// item's foreign keys. Empty names clear the key. A resolved company
// also backfills the line's company when the line has none yet.
func (s *ItemService) applyClassification(ctx context.Context, tx bun.Tx, item *models.Item, input ItemInput) error {
	company, err := repositories.NewCompanyRepository(tx).GetOrCreate(ctx, input.Company)
	if err != nil {
		return fmt.Errorf("failed to resolve company: %w", err)
	}
	item.CompanyID = nil
	if company != nil {
		item.CompanyID = &company.ID
	}

	lines := repositories.NewLineRepository(tx)
	line, err := lines.GetOrCreate(ctx, input.Line)
	if err != nil {
		return fmt.Errorf("failed to resolve line: %w", err)
	}
	item.LineID = nil
	if line != nil {
		item.LineID = &line.ID
		if line.CompanyID == nil && company != nil {
			if err := lines.BackfillCompany(ctx, line.ID, company.ID); err != nil {
				return fmt.Errorf("failed to backfill line company: %w", err)
			}
		}
	}

	series, err := repositories.NewSeriesRepository(tx).GetOrCreate(ctx, input.Series)
	if err != nil {
		return fmt.Errorf("failed to resolve series: %w", err)
	}
	item.SeriesID = nil
	if series != nil {
		item.SeriesID = &series.ID
	}

	itemType, err := repositories.NewItemTypeRepository(tx).GetOrCreate(ctx, input.ItemType)
	if err != nil {
		return fmt.Errorf("failed to resolve item type: %w", err)
	}
	item.ItemTypeID = nil
	if itemType != nil {
		item.ItemTypeID = &itemType.ID
	}

	category, err := repositories.NewCategoryRepository(tx).GetOrCreate(ctx, input.Category)
	if err != nil {
		return fmt.Errorf("failed to resolve category: %w", err)
	}
	item.CategoryID = nil
	if category != nil {
		item.CategoryID = &category.ID
	}

	return nil
}

func (s *ItemService) syncCharactersInTx(ctx context.Context, tx bun.Tx, itemID int64, raw, faction string) error {
	characterRepo := repositories.NewCharacterRepository(tx)
	links, err := characters.NewSyncer(characterRepo, repositories.NewItemCharacterRepository(tx)).Sync(ctx, itemID, raw)
	if err != nil {
		return err
	}
	if faction == "" || len(links) == 0 {
		return nil
	}

	resolved, err := repositories.NewFactionRepository(tx).GetOrCreate(ctx, faction)
	if err != nil {
		return fmt.Errorf("failed to resolve faction: %w", err)
	}
	if resolved == nil {
		return nil
	}
	for _, link := range links {
		if err := characterRepo.BackfillFaction(ctx, link.CharacterID, resolved.ID); err != nil {
			return fmt.Errorf("failed to backfill character faction: %w", err)
		}
	}
	return nil
}

func (s *ItemService) applyTags(ctx context.Context, tx bun.Tx, itemID int64, names []string) error {
	tags := repositories.NewTagRepository(tx)
	if err := tags.DeleteByItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	seen := make(map[int64]bool, len(names))
	for _, name := range names {
		tag, err := tags.GetOrCreate(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		if tag == nil || seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		if err := tags.TagItem(ctx, itemID, tag.ID); err != nil {
			return fmt.Errorf("failed to tag item: %w", err)
		}
	}
	return nil
}

func (s *ItemService) createPurchaseInTx(ctx context.Context, tx bun.Tx, itemID int64, input PurchaseInput) (*models.Purchase, error) {
	purchase := &models.Purchase{
		ItemID:       itemID,
		CollectionID: input.CollectionID,
		OrderDate:    input.OrderDate,
		PurchaseDate: input.PurchaseDate,
		ShipDate:     input.ShipDate,
		Price:        input.Price,
		Tax:          input.Tax,
		Shipping:     input.Shipping,
		Currency:     input.Currency,
		OrderNumber:  input.OrderNumber,
		Quantity:     input.Quantity,
		Notes:        input.Notes,
	}

	vendor, err := repositories.NewVendorRepository(tx).GetOrCreate(ctx, input.Vendor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vendor: %w", err)
	}
	if vendor != nil {
		purchase.VendorID = &vendor.ID
	}

	if err := repositories.NewPurchaseRepository(tx).Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	return purchase, nil
}
