package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *models.ItemPhoto) error
	GetByID(ctx context.Context, id int64) (*models.ItemPhoto, error)
	GetByItem(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error)
	Delete(ctx context.Context, id int64) error
	ReassignItem(ctx context.Context, fromItemID, toItemID int64) error
}

type photoRepository struct {
	db bun.IDB
}

func NewPhotoRepository(db bun.IDB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(ctx context.Context, photo *models.ItemPhoto) error {
	photo.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(photo).Exec(ctx)
	return err
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (*models.ItemPhoto, error) {
	var photo models.ItemPhoto
	err := r.db.NewSelect().
		Model(&photo).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *photoRepository) GetByItem(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error) {
	var photos []*models.ItemPhoto
	err := r.db.NewSelect().
		Model(&photos).
		Where("item_id = ?", itemID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.ItemPhoto)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *photoRepository) ReassignItem(ctx context.Context, fromItemID, toItemID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.ItemPhoto)(nil)).
		Set("item_id = ?", toItemID).
		Where("item_id = ?", fromItemID).
		Exec(ctx)
	return err
}
