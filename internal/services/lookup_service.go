package services

import (
	"context"
	"fmt"

	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
)

// LookupEntry is one entry of a classification list. CompanyID is set
// only on lines, tying each line to its company.
type LookupEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

// Lookups carries every classification list, name-ordered, for
// populating the item form's select fields.
type Lookups struct {
	Companies  []LookupEntry `json:"companies"`
	Lines      []LookupEntry `json:"lines"`
	Series     []LookupEntry `json:"series"`
	Types      []LookupEntry `json:"types"`
	Categories []LookupEntry `json:"categories"`
	Vendors    []LookupEntry `json:"vendors"`
	Factions   []LookupEntry `json:"factions"`
	Teams      []LookupEntry `json:"teams"`
	Tags       []LookupEntry `json:"tags"`
}

type LookupService struct {
	db *database.DB
}

func NewLookupService(db *database.DB) *LookupService {
	return &LookupService{db: db}
}

// Lists loads all classification lists.
func (s *LookupService) Lists(ctx context.Context) (*Lookups, error) {
	idb := s.db.BunDB()
	out := &Lookups{}

	companies, err := repositories.NewCompanyRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	for _, v := range companies {
		out.Companies = append(out.Companies, LookupEntry{ID: v.ID, Name: v.Name})
	}

	lines, err := repositories.NewLineRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines: %w", err)
	}
	for _, v := range lines {
		out.Lines = append(out.Lines, LookupEntry{ID: v.ID, Name: v.Name, CompanyID: v.CompanyID})
	}

	series, err := repositories.NewSeriesRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	for _, v := range series {
		out.Series = append(out.Series, LookupEntry{ID: v.ID, Name: v.Name})
	}

	types, err := repositories.NewItemTypeRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load types: %w", err)
	}
	for _, v := range types {
		out.Types = append(out.Types, LookupEntry{ID: v.ID, Name: v.Name})
	}

	categories, err := repositories.NewCategoryRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	for _, v := range categories {
		out.Categories = append(out.Categories, LookupEntry{ID: v.ID, Name: v.Name})
	}

	vendors, err := repositories.NewVendorRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendors: %w", err)
	}
	for _, v := range vendors {
		out.Vendors = append(out.Vendors, LookupEntry{ID: v.ID, Name: v.Name})
	}

	factions, err := repositories.NewFactionRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load factions: %w", err)
	}
	for _, v := range factions {
		out.Factions = append(out.Factions, LookupEntry{ID: v.ID, Name: v.Name})
	}

	teams, err := repositories.NewTeamRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	for _, v := range teams {
		out.Teams = append(out.Teams, LookupEntry{ID: v.ID, Name: v.Name})
	}

	tags, err := repositories.NewTagRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	for _, v := range tags {
		out.Tags = append(out.Tags, LookupEntry{ID: v.ID, Name: v.Name})
	}

	return out, nil
}
