package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

type ItemCharacterRepository interface {
	GetByItem(ctx context.Context, itemID int64) ([]*models.ItemCharacter, error)
	Create(ctx context.Context, link *models.ItemCharacter) error
	DeleteByItem(ctx context.Context, itemID int64) error
	ReassignItem(ctx context.Context, fromItemID, toItemID int64) error
}

type itemCharacterRepository struct {
	db bun.IDB
}

func NewItemCharacterRepository(db bun.IDB) ItemCharacterRepository {
	return &itemCharacterRepository{db: db}
}

// GetByItem returns an item's character links, primary first, then by
// case-insensitive character name.
func (r *itemCharacterRepository) GetByItem(ctx context.Context, itemID int64) ([]*models.ItemCharacter, error) {
	var links []*models.ItemCharacter
	err := r.db.NewSelect().
		Model(&links).
		Relation("Character").
		Where("ic.item_id = ?", itemID).
		OrderExpr(`ic.is_primary DESC, LOWER("character".name) ASC`).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *itemCharacterRepository) Create(ctx context.Context, link *models.ItemCharacter) error {
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	return err
}

func (r *itemCharacterRepository) DeleteByItem(ctx context.Context, itemID int64) error {
	_, err := r.db.NewDelete().
		Model((*models.ItemCharacter)(nil)).
		Where("item_id = ?", itemID).
		Exec(ctx)
	return err
}

// ReassignItem moves character links from one item to another, dropping
// links the target item already has.
func (r *itemCharacterRepository) ReassignItem(ctx context.Context, fromItemID, toItemID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.ItemCharacter)(nil)).
		Set("item_id = ?", toItemID).
		Where("item_id = ?", fromItemID).
		Where("character_id NOT IN (SELECT character_id FROM item_characters WHERE item_id = ?)", toItemID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return r.DeleteByItem(ctx, fromItemID)
}
