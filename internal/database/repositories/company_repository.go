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

type CompanyRepository interface {
	GetByName(ctx context.Context, name string) (*models.Company, error)
	GetOrCreate(ctx context.Context, name string) (*models.Company, error)
	GetAll(ctx context.Context) ([]*models.Company, error)
}

type companyRepository struct {
	db bun.IDB
}

func NewCompanyRepository(db bun.IDB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	err := r.db.NewSelect().
		Model(&company).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) GetOrCreate(ctx context.Context, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	company := &models.Company{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(company).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	if company.ID == 0 {
		// Lost a concurrent insert race; fetch the winner.
		return r.GetByName(ctx, name)
	}
	return company, nil
}

func (r *companyRepository) GetAll(ctx context.Context) ([]*models.Company, error) {
	var companies []*models.Company
	err := r.db.NewSelect().
		Model(&companies).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return companies, nil
}

type LineRepository interface {
	GetByName(ctx context.Context, name string) (*models.Line, error)
	GetOrCreate(ctx context.Context, name string) (*models.Line, error)
	BackfillCompany(ctx context.Context, lineID, companyID int64) error
	GetAll(ctx context.Context) ([]*models.Line, error)
}

type lineRepository struct {
	db bun.IDB
}

func NewLineRepository(db bun.IDB) LineRepository {
	return &lineRepository{db: db}
}

// GetByName returns the first line with the given name. Line names are
// not unique across companies, so the oldest row wins.
func (r *lineRepository) GetByName(ctx context.Context, name string) (*models.Line, error) {
	var line models.Line
	err := r.db.NewSelect().
		Model(&line).
		Where("name = ?", name).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *lineRepository) GetOrCreate(ctx context.Context, name string) (*models.Line, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	line := &models.Line{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().Model(line).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create line: %w", err)
	}
	return line, nil
}

// BackfillCompany attaches a company to a line that has none yet.
// Lines that already belong to a company are left alone.
func (r *lineRepository) BackfillCompany(ctx context.Context, lineID, companyID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Line)(nil)).
		Set("company_id = ?", companyID).
		Where("id = ?", lineID).
		Where("company_id IS NULL").
		Exec(ctx)
	return err
}

func (r *lineRepository) GetAll(ctx context.Context) ([]*models.Line, error) {
	var lines []*models.Line
	err := r.db.NewSelect().
		Model(&lines).
		Relation("Company").
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return lines, nil
}
