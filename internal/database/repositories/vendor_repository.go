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

type VendorRepository interface {
	GetByName(ctx context.Context, name string) (*models.Vendor, error)
	GetOrCreate(ctx context.Context, name string) (*models.Vendor, error)
	GetAll(ctx context.Context) ([]*models.Vendor, error)
}

type vendorRepository struct {
	db bun.IDB
}

func NewVendorRepository(db bun.IDB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) GetByName(ctx context.Context, name string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.NewSelect().
		Model(&vendor).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) GetOrCreate(ctx context.Context, name string) (*models.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	vendor := &models.Vendor{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(vendor).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}
	if vendor.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return vendor, nil
}

func (r *vendorRepository) GetAll(ctx context.Context) ([]*models.Vendor, error) {
	var vendors []*models.Vendor
	err := r.db.NewSelect().
		Model(&vendors).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return vendors, nil
}
