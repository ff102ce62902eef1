package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

type TagRepository interface {
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
	GetAll(ctx context.Context) ([]*models.Tag, error)
	TagItem(ctx context.Context, itemID, tagID int64) error
	DeleteByItem(ctx context.Context, itemID int64) error
	ReassignItem(ctx context.Context, fromItemID, toItemID int64) error
}

type tagRepository struct {
	db bun.IDB
}

func NewTagRepository(db bun.IDB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.NewSelect().
		Model(&tag).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	tag := &models.Tag{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(tag).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	if tag.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return tag, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.NewSelect().
		Model(&tags).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) TagItem(ctx context.Context, itemID, tagID int64) error {
	_, err := r.db.NewInsert().
		Model(&models.ItemTag{ItemID: itemID, TagID: tagID}).
		On("CONFLICT (item_id, tag_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *tagRepository) DeleteByItem(ctx context.Context, itemID int64) error {
	_, err := r.db.NewDelete().
		Model((*models.ItemTag)(nil)).
		Where("item_id = ?", itemID).
		Exec(ctx)
	return err
}

// ReassignItem moves tag rows from one item to another, dropping rows
// the target item already has.
func (r *tagRepository) ReassignItem(ctx context.Context, fromItemID, toItemID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.ItemTag)(nil)).
		Set("item_id = ?", toItemID).
		Where("item_id = ?", fromItemID).
		Where("tag_id NOT IN (SELECT tag_id FROM item_tags WHERE item_id = ?)", toItemID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return r.DeleteByItem(ctx, fromItemID)
}
