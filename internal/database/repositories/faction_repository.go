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

type FactionRepository interface {
	GetByName(ctx context.Context, name string) (*models.Faction, error)
	GetOrCreate(ctx context.Context, name string) (*models.Faction, error)
	GetAll(ctx context.Context) ([]*models.Faction, error)
}

type factionRepository struct {
	db bun.IDB
}

func NewFactionRepository(db bun.IDB) FactionRepository {
	return &factionRepository{db: db}
}

func (r *factionRepository) GetByName(ctx context.Context, name string) (*models.Faction, error) {
	var faction models.Faction
	err := r.db.NewSelect().
		Model(&faction).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &faction, nil
}

func (r *factionRepository) GetOrCreate(ctx context.Context, name string) (*models.Faction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	faction := &models.Faction{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(faction).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create faction: %w", err)
	}
	if faction.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return faction, nil
}

func (r *factionRepository) GetAll(ctx context.Context) ([]*models.Faction, error) {
	var factions []*models.Faction
	err := r.db.NewSelect().
		Model(&factions).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return factions, nil
}

type TeamRepository interface {
	GetByName(ctx context.Context, name string) (*models.Team, error)
	GetOrCreate(ctx context.Context, name string) (*models.Team, error)
	GetAll(ctx context.Context) ([]*models.Team, error)
	AddMember(ctx context.Context, teamID, characterID int64) error
}

type teamRepository struct {
	db bun.IDB
}

func NewTeamRepository(db bun.IDB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	var team models.Team
	err := r.db.NewSelect().
		Model(&team).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetOrCreate(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	team := &models.Team{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(team).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	if team.ID == 0 {
		return r.GetByName(ctx, name)
	}
	return team, nil
}

func (r *teamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	var teams []*models.Team
	err := r.db.NewSelect().
		Model(&teams).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember links a character to a team, ignoring repeats.
func (r *teamRepository) AddMember(ctx context.Context, teamID, characterID int64) error {
	_, err := r.db.NewInsert().
		Model(&models.CharacterTeam{TeamID: teamID, CharacterID: characterID}).
		On("CONFLICT (character_id, team_id) DO NOTHING").
		Exec(ctx)
	return err
}
