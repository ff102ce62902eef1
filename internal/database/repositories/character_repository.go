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

type CharacterRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Character, error)
	GetByName(ctx context.Context, name string) (*models.Character, error)
	GetOrCreate(ctx context.Context, name string) (*models.Character, error)
	GetAll(ctx context.Context) ([]*models.Character, error)
	BackfillFaction(ctx context.Context, characterID, factionID int64) error
	SetFaction(ctx context.Context, characterID, factionID int64) error
	GetItems(ctx context.Context, characterID int64) ([]*models.Item, error)
	Count(ctx context.Context) (int, error)
}

type characterRepository struct {
	db bun.IDB
}

func NewCharacterRepository(db bun.IDB) CharacterRepository {
	return &characterRepository{db: db}
}

func (r *characterRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	var character models.Character
	err := r.db.NewSelect().
		Model(&character).
		Relation("Faction").
		Where("ch.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &character, nil
}

// GetByName matches the character name exactly, case included.
func (r *characterRepository) GetByName(ctx context.Context, name string) (*models.Character, error) {
	var character models.Character
	err := r.db.NewSelect().
		Model(&character).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &character, nil
}

// GetOrCreate resolves a character by exact name, creating it when
// absent. A blank name resolves to nothing.
func (r *characterRepository) GetOrCreate(ctx context.Context, name string) (*models.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if existing, err := r.GetByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}

	character := &models.Character{Name: name, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().
		Model(character).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	if character.ID == 0 {
		// Lost a concurrent insert race; fetch the winner.
		return r.GetByName(ctx, name)
	}
	return character, nil
}

func (r *characterRepository) GetAll(ctx context.Context) ([]*models.Character, error) {
	var characters []*models.Character
	err := r.db.NewSelect().
		Model(&characters).
		Relation("Faction").
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// BackfillFaction attaches a faction to a character that has none yet.
func (r *characterRepository) BackfillFaction(ctx context.Context, characterID, factionID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Character)(nil)).
		Set("faction_id = ?", factionID).
		Where("id = ?", characterID).
		Where("faction_id IS NULL").
		Exec(ctx)
	return err
}

// SetFaction assigns a faction unconditionally. Seed files are the
// authority on allegiance, so they overwrite instead of backfilling.
func (r *characterRepository) SetFaction(ctx context.Context, characterID, factionID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Character)(nil)).
		Set("faction_id = ?", factionID).
		Where("id = ?", characterID).
		Exec(ctx)
	return err
}

// GetItems lists the items depicting a character, newest first.
func (r *characterRepository) GetItems(ctx context.Context, characterID int64) ([]*models.Item, error) {
	var items []*models.Item
	err := r.db.NewSelect().
		Model(&items).
		Join("JOIN item_characters AS ic ON ic.item_id = i.id").
		Where("ic.character_id = ?", characterID).
		Relation("Company").
		Order("i.created_at DESC", "i.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *characterRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*models.Character)(nil)).Count(ctx)
}
