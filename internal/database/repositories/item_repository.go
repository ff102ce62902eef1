package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters ItemFilters) ([]*models.Item, int, error)
	GetImported(ctx context.Context) ([]*models.Item, error)
	GetAllDetailed(ctx context.Context, owner string) ([]*models.Item, error)
	ListNames(ctx context.Context) ([]*models.Item, error)
	Count(ctx context.Context) (int, error)
}

type itemRepository struct {
	db bun.IDB
}

func NewItemRepository(db bun.IDB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	if item.Status == "" {
		item.Status = models.StatusOwned
	}
	_, err := r.db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := r.db.NewSelect().
		Model(&item).
		Relation("Company").
		Relation("Line").
		Relation("Series").
		Relation("ItemType").
		Relation("Category").
		Relation("CharacterLinks.Character").
		Relation("Tags.Tag").
		Relation("Photos").
		Relation("Purchases.Vendor").
		Where("i.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().Model(item).WherePK().Exec(ctx)
	return err
}

// Delete removes an item together with its links, tags, photos and
// purchases, all in one transaction.
func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.ItemCharacter)(nil)).
			Where("item_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete character links: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.ItemTag)(nil)).
			Where("item_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete tags: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.ItemPhoto)(nil)).
			Where("item_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete photos: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.Purchase)(nil)).
			Where("item_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete purchases: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.Item)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

func (r *itemRepository) List(ctx context.Context, filters ItemFilters) ([]*models.Item, int, error) {
	filters.Normalize()

	var items []*models.Item
	query := r.db.NewSelect().
		Model(&items).
		Relation("Company").
		Relation("Line").
		Relation("CharacterLinks.Character")

	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("(i.name ILIKE ? OR i.sku ILIKE ? OR i.notes ILIKE ?)", like, like, like)
	}
	if filters.Status != "" {
		query = query.Where("i.status = ?", filters.Status)
	}
	if filters.Company != "" {
		query = query.Where("i.company_id IN (SELECT id FROM companies WHERE name = ?)", filters.Company)
	}
	if filters.Owner != "" {
		query = query.Where("i.extra->>'owner_id' = ?", filters.Owner)
	}

	total, err := query.
		OrderExpr("i.created_at DESC, i.id DESC").
		Limit(filters.PageSize).
		Offset(filters.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetImported returns items stamped by an import run, newest first.
func (r *itemRepository) GetImported(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item
	err := r.db.NewSelect().
		Model(&items).
		Relation("Company").
		Relation("Purchases.Vendor").
		Where("i.extra->>'import_batch' IS NOT NULL").
		OrderExpr("i.created_at DESC, i.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetAllDetailed loads every item with its classification and links,
// optionally restricted to one owner marker. Used by the overview
// aggregates and the deduplication pass.
func (r *itemRepository) GetAllDetailed(ctx context.Context, owner string) ([]*models.Item, error) {
	var items []*models.Item
	query := r.db.NewSelect().
		Model(&items).
		Relation("Company").
		Relation("Line").
		Relation("Series").
		Relation("ItemType").
		Relation("Category").
		Relation("CharacterLinks").
		Relation("Purchases")

	if owner != "" {
		query = query.Where("i.extra->>'owner_id' = ?", owner)
	}

	err := query.OrderExpr("i.id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListNames loads id and name pairs only, for the search index.
func (r *itemRepository) ListNames(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item
	err := r.db.NewSelect().
		Model(&items).
		Column("i.id", "i.name").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*models.Item)(nil)).Count(ctx)
}
