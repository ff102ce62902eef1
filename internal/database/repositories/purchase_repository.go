package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id int64) (*models.Purchase, error)
	GetByItem(ctx context.Context, itemID int64) ([]*models.Purchase, error)
	GetAll(ctx context.Context) ([]*models.Purchase, error)
	Delete(ctx context.Context, id int64) error
	ReassignItem(ctx context.Context, fromItemID, toItemID int64) error
	Count(ctx context.Context) (int, error)
	CountByCollection(ctx context.Context) (map[int64]int, error)
}

type purchaseRepository struct {
	db bun.IDB
}

func NewPurchaseRepository(db bun.IDB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	purchase.CreatedAt = time.Now()
	if purchase.Quantity <= 0 {
		purchase.Quantity = 1
	}
	_, err := r.db.NewInsert().Model(purchase).Exec(ctx)
	return err
}

func (r *purchaseRepository) GetByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.NewSelect().
		Model(&purchase).
		Relation("Vendor").
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// GetByItem lists an item's purchases newest first, dateless rows last.
func (r *purchaseRepository) GetByItem(ctx context.Context, itemID int64) ([]*models.Purchase, error) {
	var purchases []*models.Purchase
	err := r.db.NewSelect().
		Model(&purchases).
		Relation("Vendor").
		Where("p.item_id = ?", itemID).
		OrderExpr("p.purchase_date DESC NULLS LAST, p.order_date DESC NULLS LAST, p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) GetAll(ctx context.Context) ([]*models.Purchase, error) {
	var purchases []*models.Purchase
	err := r.db.NewSelect().
		Model(&purchases).
		Relation("Vendor").
		OrderExpr("p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Purchase)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ReassignItem repoints purchases at another item. Used when merging
// duplicate items.
func (r *purchaseRepository) ReassignItem(ctx context.Context, fromItemID, toItemID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Purchase)(nil)).
		Set("item_id = ?", toItemID).
		Where("item_id = ?", fromItemID).
		Exec(ctx)
	return err
}

func (r *purchaseRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*models.Purchase)(nil)).Count(ctx)
}

// CountByCollection returns the number of purchases filed under each
// collection. Purchases outside any collection are not counted.
func (r *purchaseRepository) CountByCollection(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		CollectionID int64 `bun:"collection_id"`
		Purchases    int   `bun:"purchases"`
	}
	err := r.db.NewSelect().
		Model((*models.Purchase)(nil)).
		ColumnExpr("p.collection_id").
		ColumnExpr("COUNT(*) AS purchases").
		Where("p.collection_id IS NOT NULL").
		GroupExpr("p.collection_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.CollectionID] = row.Purchases
	}
	return counts, nil
}
