package characters

import (
	"context"
	"fmt"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

// CharacterStore resolves characters by name, creating them on demand.
// Blank names resolve to nil without error.
type CharacterStore interface {
	GetOrCreate(ctx context.Context, name string) (*models.Character, error)
}

// LinkStore holds an item's character links.
type LinkStore interface {
	DeleteByItem(ctx context.Context, itemID int64) error
	Create(ctx context.Context, link *models.ItemCharacter) error
}

// Syncer replaces an item's character links from a free-text list.
// Callers that need atomicity run Sync inside a transaction and pass
// transaction-scoped stores.
type Syncer struct {
	characters CharacterStore
	links      LinkStore
}

func NewSyncer(characters CharacterStore, links LinkStore) *Syncer {
	return &Syncer{characters: characters, links: links}
}

// Sync deletes every existing link for the item and recreates the set
// from the parsed list. Duplicate names collapse into one link. At most
// one link ends up primary: the first entry carrying an explicit
// primary marker wins and later markers are demoted; when no entry is
// marked, the first one is promoted. An empty list just clears the
// links. Syncing the same input twice is a no-op.
func (s *Syncer) Sync(ctx context.Context, itemID int64, raw string) ([]*models.ItemCharacter, error) {
	entries := ParseList(raw)

	if err := s.links.DeleteByItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to clear character links: %w", err)
	}

	var created []*models.ItemCharacter
	seen := make(map[int64]*models.ItemCharacter, len(entries))
	primaryTaken := false

	for _, entry := range entries {
		character, err := s.characters.GetOrCreate(ctx, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve character %q: %w", entry.Name, err)
		}
		if character == nil {
			continue
		}

		if existing, ok := seen[character.ID]; ok {
			// Collapse the duplicate; its primary marker can still
			// claim the flag if nobody beat it to it.
			if entry.Primary && !primaryTaken {
				existing.IsPrimary = true
				primaryTaken = true
			}
			continue
		}

		link := &models.ItemCharacter{
			ItemID:      itemID,
			CharacterID: character.ID,
			Role:        joinModifiers(entry.Modifiers),
		}
		if entry.Primary && !primaryTaken {
			link.IsPrimary = true
			primaryTaken = true
		}
		seen[character.ID] = link
		created = append(created, link)
	}

	if !primaryTaken && len(created) > 0 {
		created[0].IsPrimary = true
	}

	for _, link := range created {
		if err := s.links.Create(ctx, link); err != nil {
			return nil, fmt.Errorf("failed to create character link: %w", err)
		}
	}

	return created, nil
}
