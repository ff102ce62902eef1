package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/dbutil"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
)

// DedupeResult reports what a deduplication pass changed.
type DedupeResult struct {
	GroupsMerged int `json:"groups_merged"`
	ItemsRemoved int `json:"items_removed"`
}

// DedupeService collapses exact-duplicate items. Two items are
// duplicates when every descriptive field and classification matches;
// the lowest-ID item of a group survives and everything hanging off
// the others is repointed to it.
type DedupeService struct {
	tm *dbutil.TransactionManager
}

func NewDedupeService(db *database.DB) *DedupeService {
	return &DedupeService{tm: dbutil.NewTransactionManager(db.BunDB())}
}

// Deduplicate merges duplicate items (optionally one owner's) in one
// serializable transaction, so purchases recorded mid-merge cannot
// land on an item about to be deleted.
func (s *DedupeService) Deduplicate(ctx context.Context, owner string) (*DedupeResult, error) {
	result := &DedupeResult{}
	opts := dbutil.SerializableTransactionOptions()
	opts.Timeout = 2 * time.Minute

	err := s.tm.WithTransaction(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		items, err := repositories.NewItemRepository(tx).GetAllDetailed(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to load items: %w", err)
		}

		for _, group := range groupDuplicates(items) {
			keeper := group[0]
			for _, dupe := range group[1:] {
				if err := s.mergeInto(ctx, tx, keeper, dupe); err != nil {
					return err
				}
				result.ItemsRemoved++
			}
			result.GroupsMerged++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Deduplication finished",
		slog.String("type", "db"),
		slog.Int("groups_merged", result.GroupsMerged),
		slog.Int("items_removed", result.ItemsRemoved),
	)
	return result, nil
}

func (s *DedupeService) mergeInto(ctx context.Context, tx bun.Tx, keeper, dupe *models.Item) error {
	if err := repositories.NewPurchaseRepository(tx).ReassignItem(ctx, dupe.ID, keeper.ID); err != nil {
		return fmt.Errorf("failed to move purchases from item %d: %w", dupe.ID, err)
	}
	if err := repositories.NewItemCharacterRepository(tx).ReassignItem(ctx, dupe.ID, keeper.ID); err != nil {
		return fmt.Errorf("failed to move character links from item %d: %w", dupe.ID, err)
	}
	if err := repositories.NewPhotoRepository(tx).ReassignItem(ctx, dupe.ID, keeper.ID); err != nil {
		return fmt.Errorf("failed to move photos from item %d: %w", dupe.ID, err)
	}
	if err := repositories.NewTagRepository(tx).ReassignItem(ctx, dupe.ID, keeper.ID); err != nil {
		return fmt.Errorf("failed to move tags from item %d: %w", dupe.ID, err)
	}

	if _, err := tx.NewDelete().
		Model((*models.Item)(nil)).
		Where("id = ?", dupe.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete duplicate item %d: %w", dupe.ID, err)
	}
	return nil
}

// groupDuplicates buckets items by signature and returns only the
// groups with more than one member, each ordered by ID so the first
// element is the keeper. Groups come back ordered by keeper ID.
func groupDuplicates(items []*models.Item) [][]*models.Item {
	buckets := make(map[string][]*models.Item)
	for _, item := range items {
		sig := itemSignature(item)
		buckets[sig] = append(buckets[sig], item)
	}

	var groups [][]*models.Item
	for _, group := range buckets {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0].ID < groups[j][0].ID })
	return groups
}

// itemSignature renders the duplicate-detection key: every descriptive
// field plus the five classification foreign keys.
func itemSignature(item *models.Item) string {
	year := ""
	if item.Year != nil {
		year = strconv.Itoa(*item.Year)
	}
	parts := []string{
		item.Name, item.SKU, item.Version, year,
		item.Scale, item.Condition, item.Status,
		item.Location, item.URL, item.Notes,
		fkString(item.CompanyID), fkString(item.LineID), fkString(item.SeriesID),
		fkString(item.ItemTypeID), fkString(item.CategoryID),
	}
	return strings.Join(parts, "\x1f")
}

func fkString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
