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

type SeriesRepository interface {
	GetByName(ctx context.Context, name string) (*models.Series, error)
	GetOrCreate(ctx context.Context, name string) (*models.Series, error)
	GetAll(ctx context.Context) ([]*models.Series, error)
}

type seriesRepository struct {
	db bun.IDB
}

func NewSeriesRepository(db bun.IDB) SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) GetByName(ctx context.Context, name string) (*models.Series, error) {
	var series models.Series
	err := r.db.NewSelect().
		Model(&series).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &series, nil
}

func (r *seriesRepository) GetOrCreate(ctx context.Context, name string) (*models.Series, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	series := &models.Series{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(series).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	if series.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return series, nil
}

func (r *seriesRepository) GetAll(ctx context.Context) ([]*models.Series, error) {
	var series []*models.Series
	err := r.db.NewSelect().
		Model(&series).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return series, nil
}

type ItemTypeRepository interface {
	GetByName(ctx context.Context, name string) (*models.ItemType, error)
	GetOrCreate(ctx context.Context, name string) (*models.ItemType, error)
	GetAll(ctx context.Context) ([]*models.ItemType, error)
}

type itemTypeRepository struct {
	db bun.IDB
}

func NewItemTypeRepository(db bun.IDB) ItemTypeRepository {
	return &itemTypeRepository{db: db}
}

func (r *itemTypeRepository) GetByName(ctx context.Context, name string) (*models.ItemType, error) {
	var itemType models.ItemType
	err := r.db.NewSelect().
		Model(&itemType).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &itemType, nil
}

func (r *itemTypeRepository) GetOrCreate(ctx context.Context, name string) (*models.ItemType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	itemType := &models.ItemType{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(itemType).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create item type: %w", err)
	}
	if itemType.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return itemType, nil
}

func (r *itemTypeRepository) GetAll(ctx context.Context) ([]*models.ItemType, error) {
	var itemTypes []*models.ItemType
	err := r.db.NewSelect().
		Model(&itemTypes).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return itemTypes, nil
}

type CategoryRepository interface {
	GetByName(ctx context.Context, name string) (*models.Category, error)
	GetOrCreate(ctx context.Context, name string) (*models.Category, error)
	GetAll(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db bun.IDB
}

func NewCategoryRepository(db bun.IDB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.NewSelect().
		Model(&category).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetOrCreate(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	category := &models.Category{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(category).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if category.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.NewSelect().
		Model(&categories).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
