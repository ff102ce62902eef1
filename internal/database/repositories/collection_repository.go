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

type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id int64) (*models.Collection, error)
	GetAll(ctx context.Context, owner string) ([]*models.Collection, error)
	GetOrCreate(ctx context.Context, name, owner string) (*models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id int64) error
}

type collectionRepository struct {
	db bun.IDB
}

func NewCollectionRepository(db bun.IDB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	collection.CreatedAt = time.Now()
	collection.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(collection).Exec(ctx)
	return err
}

func (r *collectionRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.NewSelect().
		Model(&collection).
		Relation("Purchases.Item").
		Relation("Purchases.Vendor").
		Where("col.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) GetAll(ctx context.Context, owner string) ([]*models.Collection, error) {
	var collections []*models.Collection
	query := r.db.NewSelect().
		Model(&collections).
		Order("name ASC")
	if owner != "" {
		query = query.Where("owner_id = ?", owner)
	}
	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepository) GetOrCreate(ctx context.Context, name, owner string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var collection models.Collection
	err := r.db.NewSelect().
		Model(&collection).
		Where("name = ?", name).
		Where("owner_id = ?", owner).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return &collection, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	created := &models.Collection{
		Name:      name,
		OwnerID:   owner,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := r.db.NewInsert().Model(created).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return created, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	collection.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().Model(collection).WherePK().Exec(ctx)
	return err
}

func (r *collectionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Purchases survive a collection delete; they just lose the grouping.
		if _, err := tx.NewUpdate().
			Model((*models.Purchase)(nil)).
			Set("collection_id = NULL").
			Where("collection_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to detach purchases: %w", err)
		}
		_, err := tx.NewDelete().
			Model((*models.Collection)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
