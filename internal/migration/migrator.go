// Package migration moves a predecessor app's MongoDB database into
// the normalized Postgres schema. Characters land first, then items
// with their embedded character links and tags, then purchases, so
// every foreign key resolves by the time it is written.
package migration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/dbutil"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
	"github.com/collectorsden/shelftrack/internal/logger"
)

const connectTimeout = 10 * time.Second

// Connect opens and pings the source MongoDB.
func Connect(ctx context.Context, cfg config.MigrationConfig) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("migration.mongo_uri is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Migrator copies characters, items, links and purchases out of the
// legacy database. Items carry their source ObjectID in
// extra["legacy_id"], which makes re-runs skip what already landed.
type Migrator struct {
	db        *database.DB
	tm        *dbutil.TransactionManager
	source    *mongo.Database
	batchSize int
	workers   int
	dryRun    bool

	mu           sync.Mutex
	stats        Stats
	characterIDs map[string]int64
	itemIDs      map[string]int64 // legacy hex id -> items.id
	newItems     map[string]bool  // legacy hex ids created in this run
}

func NewMigrator(db *database.DB, source *mongo.Database, cfg config.MigrationConfig) *Migrator {
	return &Migrator{
		db:           db,
		tm:           dbutil.NewTransactionManager(db.BunDB()),
		source:       source,
		batchSize:    cfg.BatchSize,
		workers:      cfg.Workers,
		characterIDs: make(map[string]int64),
		itemIDs:      make(map[string]int64),
		newItems:     make(map[string]bool),
	}
}

// SetDryRun makes Run fetch and convert without writing.
func (m *Migrator) SetDryRun(v bool) { m.dryRun = v }

// Run executes the whole migration and returns its statistics.
func (m *Migrator) Run(ctx context.Context) (*Stats, error) {
	m.stats = Stats{StartedAt: time.Now()}

	logProgress("Fetching source collections",
		"database", m.source.Name(), "batch_size", m.batchSize)

	var (
		characterDocs []CharacterDoc
		itemDocs      []ItemDoc
		purchaseDocs  []PurchaseDoc
	)

	// The three source collections are independent; fetch them
	// concurrently before the ordered insert phases.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		characterDocs, err = fetchAll[CharacterDoc](gctx, m.source.Collection("characters"), m.batchSize)
		return err
	})
	g.Go(func() error {
		var err error
		itemDocs, err = fetchAll[ItemDoc](gctx, m.source.Collection("items"), m.batchSize)
		return err
	})
	g.Go(func() error {
		var err error
		purchaseDocs, err = fetchAll[PurchaseDoc](gctx, m.source.Collection("purchases"), m.batchSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.stats.Characters.Read = len(characterDocs)
	m.stats.Items.Read = len(itemDocs)
	m.stats.Purchases.Read = len(purchaseDocs)
	logProgress("Source collections fetched",
		"characters", len(characterDocs), "items", len(itemDocs), "purchases", len(purchaseDocs))

	existing, err := m.loadLegacyIDs(ctx)
	if err != nil {
		return nil, err
	}
	m.itemIDs = existing

	if m.dryRun {
		m.planDryRun(characterDocs, itemDocs, purchaseDocs)
		m.stats.FinishedAt = time.Now()
		logProgress("Dry run complete", "duration", m.stats.Duration().String())
		return &m.stats, nil
	}

	if err := m.migrateCharacters(ctx, characterDocs); err != nil {
		return nil, fmt.Errorf("character migration failed: %w", err)
	}
	if err := m.migrateItems(ctx, itemDocs); err != nil {
		return nil, fmt.Errorf("item migration failed: %w", err)
	}
	if err := m.migratePurchases(ctx, purchaseDocs); err != nil {
		return nil, fmt.Errorf("purchase migration failed: %w", err)
	}
	if err := m.verify(ctx); err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	m.stats.FinishedAt = time.Now()
	logProgress("Migration complete",
		"characters", m.stats.Characters.Migrated,
		"items", m.stats.Items.Migrated,
		"links", m.stats.Links.Migrated,
		"purchases", m.stats.Purchases.Migrated,
		"duration", m.stats.Duration().String(),
	)
	return &m.stats, nil
}

// fetchAll drains one collection into memory with a bounded cursor
// batch size. Documents that fail to decode are dropped.
func fetchAll[T any](ctx context.Context, coll *mongo.Collection, batchSize int) ([]T, error) {
	opts := options.Find()
	if batchSize > 0 {
		opts.SetBatchSize(int32(batchSize))
	}

	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	var docs []T
	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", coll.Name(), err)
	}
	return docs, nil
}

// planDryRun fills the stats as a real run would, without writing.
func (m *Migrator) planDryRun(characterDocs []CharacterDoc, itemDocs []ItemDoc, purchaseDocs []PurchaseDoc) {
	for _, doc := range characterDocs {
		if strings.TrimSpace(doc.Name) == "" {
			m.stats.Characters.Skipped++
		} else {
			m.stats.Characters.Migrated++
		}
	}

	wouldCreate := make(map[string]bool, len(itemDocs))
	for _, doc := range itemDocs {
		legacyID := doc.ID.Hex()
		if strings.TrimSpace(doc.Name) == "" {
			m.stats.Items.Skipped++
			continue
		}
		if _, ok := m.itemIDs[legacyID]; ok {
			m.stats.Items.Skipped++
			continue
		}
		m.stats.Items.Migrated++
		wouldCreate[legacyID] = true
		m.stats.Links.Read += len(doc.Characters)
		m.stats.Links.Migrated += len(normalizeLinks(doc.Characters))
	}

	for _, doc := range purchaseDocs {
		if wouldCreate[doc.ItemID.Hex()] {
			m.stats.Purchases.Migrated++
		} else {
			m.stats.Purchases.Skipped++
		}
	}
}

// migrateCharacters ensures every source character exists, with its
// faction, and records the name-to-ID map used when linking items.
func (m *Migrator) migrateCharacters(ctx context.Context, docs []CharacterDoc) error {
	logProgress("Migrating characters", "count", len(docs))

	for start := 0; start < len(docs); start += m.batchSize {
		end := start + m.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		err := m.tm.WithTransaction(ctx, dbutil.StandardTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
			characterRepo := repositories.NewCharacterRepository(tx)
			factionRepo := repositories.NewFactionRepository(tx)

			for _, doc := range batch {
				name := strings.TrimSpace(doc.Name)
				if name == "" {
					m.stats.Characters.Skipped++
					continue
				}

				character, err := characterRepo.GetOrCreate(ctx, name)
				if err != nil {
					return fmt.Errorf("failed to migrate character %q: %w", name, err)
				}
				if faction := strings.TrimSpace(doc.Faction); faction != "" {
					f, err := factionRepo.GetOrCreate(ctx, faction)
					if err != nil {
						return fmt.Errorf("failed to resolve faction %q: %w", faction, err)
					}
					if err := characterRepo.BackfillFaction(ctx, character.ID, f.ID); err != nil {
						return fmt.Errorf("failed to set faction of %q: %w", name, err)
					}
				}

				m.characterIDs[name] = character.ID
				m.stats.Characters.Migrated++
			}
			return nil
		})
		if err != nil {
			return err
		}

		logProgress("Character batch done", "progress", fmt.Sprintf("%d/%d", end, len(docs)))
	}
	return nil
}

// migrateItems writes item batches concurrently, each batch in its own
// transaction. Items whose legacy ID already exists in the target are
// skipped, which makes an interrupted run safe to repeat.
func (m *Migrator) migrateItems(ctx context.Context, docs []ItemDoc) error {
	logProgress("Migrating items", "count", len(docs), "already_present", len(m.itemIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	total := len(docs)
	for start := 0; start < total; start += m.batchSize {
		end := start + m.batchSize
		if end > total {
			end = total
		}
		batch := docs[start:end]

		g.Go(func() error {
			if err := m.migrateItemBatch(gctx, batch); err != nil {
				return err
			}
			logProgress("Item batch done", "size", len(batch))
			return nil
		})
	}
	return g.Wait()
}

func (m *Migrator) migrateItemBatch(ctx context.Context, batch []ItemDoc) error {
	return m.tm.WithTransaction(ctx, dbutil.StandardTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		itemRepo := repositories.NewItemRepository(tx)
		linkRepo := repositories.NewItemCharacterRepository(tx)
		characterRepo := repositories.NewCharacterRepository(tx)
		tagRepo := repositories.NewTagRepository(tx)

		for _, doc := range batch {
			legacyID := doc.ID.Hex()
			if strings.TrimSpace(doc.Name) == "" {
				m.addStat(func(s *Stats) { s.Items.Skipped++ })
				continue
			}
			if m.hasLegacy(legacyID) {
				m.addStat(func(s *Stats) { s.Items.Skipped++ })
				continue
			}

			item := itemFromDoc(doc)
			if err := m.resolveClassification(ctx, tx, item, doc); err != nil {
				return err
			}
			if err := itemRepo.Create(ctx, item); err != nil {
				return fmt.Errorf("failed to migrate item %q: %w", doc.Name, err)
			}

			m.addStat(func(s *Stats) { s.Links.Read += len(doc.Characters) })
			for _, link := range normalizeLinks(doc.Characters) {
				characterID, err := m.resolveCharacter(ctx, characterRepo, link.Name)
				if err != nil {
					return err
				}
				if err := linkRepo.Create(ctx, &models.ItemCharacter{
					ItemID:      item.ID,
					CharacterID: characterID,
					IsPrimary:   link.Primary,
					Role:        link.Role,
				}); err != nil {
					return fmt.Errorf("failed to link %q to %q: %w", link.Name, doc.Name, err)
				}
				m.addStat(func(s *Stats) { s.Links.Migrated++ })
			}

			for _, tagName := range doc.Tags {
				tag, err := tagRepo.GetOrCreate(ctx, tagName)
				if err != nil {
					return fmt.Errorf("failed to resolve tag %q: %w", tagName, err)
				}
				if tag == nil {
					continue
				}
				if err := tagRepo.TagItem(ctx, item.ID, tag.ID); err != nil {
					return fmt.Errorf("failed to tag %q: %w", doc.Name, err)
				}
			}

			m.recordItem(legacyID, item.ID)
			m.addStat(func(s *Stats) { s.Items.Migrated++ })
		}
		return nil
	})
}

// resolveClassification fills the item's lookup foreign keys from the
// denormalized names on the document.
func (m *Migrator) resolveClassification(ctx context.Context, tx bun.Tx, item *models.Item, doc ItemDoc) error {
	company, err := repositories.NewCompanyRepository(tx).GetOrCreate(ctx, doc.Company)
	if err != nil {
		return fmt.Errorf("failed to resolve company %q: %w", doc.Company, err)
	}
	if company != nil {
		item.CompanyID = &company.ID
	}

	lineRepo := repositories.NewLineRepository(tx)
	line, err := lineRepo.GetOrCreate(ctx, doc.Line)
	if err != nil {
		return fmt.Errorf("failed to resolve line %q: %w", doc.Line, err)
	}
	if line != nil {
		item.LineID = &line.ID
		if line.CompanyID == nil && company != nil {
			if err := lineRepo.BackfillCompany(ctx, line.ID, company.ID); err != nil {
				return fmt.Errorf("failed to backfill company of line %q: %w", doc.Line, err)
			}
		}
	}

	series, err := repositories.NewSeriesRepository(tx).GetOrCreate(ctx, doc.Series)
	if err != nil {
		return fmt.Errorf("failed to resolve series %q: %w", doc.Series, err)
	}
	if series != nil {
		item.SeriesID = &series.ID
	}

	itemType, err := repositories.NewItemTypeRepository(tx).GetOrCreate(ctx, doc.Type)
	if err != nil {
		return fmt.Errorf("failed to resolve type %q: %w", doc.Type, err)
	}
	if itemType != nil {
		item.ItemTypeID = &itemType.ID
	}

	category, err := repositories.NewCategoryRepository(tx).GetOrCreate(ctx, doc.Category)
	if err != nil {
		return fmt.Errorf("failed to resolve category %q: %w", doc.Category, err)
	}
	if category != nil {
		item.CategoryID = &category.ID
	}
	return nil
}

// resolveCharacter looks a character up in the preloaded map, creating
// it when the embedded list names someone the characters collection
// did not carry.
func (m *Migrator) resolveCharacter(ctx context.Context, repo repositories.CharacterRepository, name string) (int64, error) {
	m.mu.Lock()
	id, ok := m.characterIDs[name]
	m.mu.Unlock()
	if ok {
		return id, nil
	}

	character, err := repo.GetOrCreate(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve character %q: %w", name, err)
	}
	if character == nil {
		return 0, fmt.Errorf("character name %q resolved to nothing", name)
	}

	m.mu.Lock()
	m.characterIDs[name] = character.ID
	m.mu.Unlock()
	return character.ID, nil
}

// migratePurchases writes purchases of the items created in this run.
// Items that already existed keep the purchases they migrated with.
func (m *Migrator) migratePurchases(ctx context.Context, docs []PurchaseDoc) error {
	logProgress("Migrating purchases", "count", len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	total := len(docs)
	for start := 0; start < total; start += m.batchSize {
		end := start + m.batchSize
		if end > total {
			end = total
		}
		batch := docs[start:end]

		g.Go(func() error {
			return m.migratePurchaseBatch(gctx, batch)
		})
	}
	return g.Wait()
}

func (m *Migrator) migratePurchaseBatch(ctx context.Context, batch []PurchaseDoc) error {
	return m.tm.WithTransaction(ctx, dbutil.StandardTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		purchaseRepo := repositories.NewPurchaseRepository(tx)
		vendorRepo := repositories.NewVendorRepository(tx)

		for _, doc := range batch {
			legacyID := doc.ItemID.Hex()
			m.mu.Lock()
			itemID, created := m.itemIDs[legacyID], m.newItems[legacyID]
			m.mu.Unlock()
			if !created {
				m.addStat(func(s *Stats) { s.Purchases.Skipped++ })
				continue
			}

			purchase := purchaseFromDoc(doc, itemID)
			if vendorName := strings.TrimSpace(doc.Vendor); vendorName != "" {
				vendor, err := vendorRepo.GetOrCreate(ctx, vendorName)
				if err != nil {
					return fmt.Errorf("failed to resolve vendor %q: %w", vendorName, err)
				}
				purchase.VendorID = &vendor.ID
			}

			if err := purchaseRepo.Create(ctx, purchase); err != nil {
				return fmt.Errorf("failed to migrate purchase %s: %w", doc.ID.Hex(), err)
			}
			m.addStat(func(s *Stats) { s.Purchases.Migrated++ })
		}
		return nil
	})
}

// verify counts the target tables after the run.
func (m *Migrator) verify(ctx context.Context) error {
	idb := m.db.BunDB()

	items, err := repositories.NewItemRepository(idb).Count(ctx)
	if err != nil {
		return err
	}
	characterCount, err := repositories.NewCharacterRepository(idb).Count(ctx)
	if err != nil {
		return err
	}
	purchases, err := repositories.NewPurchaseRepository(idb).Count(ctx)
	if err != nil {
		return err
	}

	m.stats.VerifiedItems = items
	m.stats.VerifiedCharacters = characterCount
	m.stats.VerifiedPurchases = purchases
	logProgress("Target verified",
		"items", items, "characters", characterCount, "purchases", purchases)
	return nil
}

// loadLegacyIDs maps the legacy ObjectIDs of items already migrated.
func (m *Migrator) loadLegacyIDs(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ID       int64  `bun:"id"`
		LegacyID string `bun:"legacy_id"`
	}
	err := m.db.BunDB().NewSelect().
		Model((*models.Item)(nil)).
		ColumnExpr("i.id").
		ColumnExpr("i.extra->>? AS legacy_id", models.ExtraLegacyID).
		Where("i.extra->>? IS NOT NULL", models.ExtraLegacyID).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrated item ids: %w", err)
	}

	ids := make(map[string]int64, len(rows))
	for _, row := range rows {
		ids[row.LegacyID] = row.ID
	}
	return ids, nil
}

func (m *Migrator) hasLegacy(legacyID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.itemIDs[legacyID]
	return ok
}

func (m *Migrator) recordItem(legacyID string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemIDs[legacyID] = id
	m.newItems[legacyID] = true
}

func (m *Migrator) addStat(fn func(*Stats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.stats)
}

// itemFromDoc converts an item document, stamping its legacy ID and
// owner into the extra column.
func itemFromDoc(doc ItemDoc) *models.Item {
	item := &models.Item{
		Name:      strings.TrimSpace(doc.Name),
		SKU:       doc.SKU,
		Version:   doc.Version,
		Year:      doc.Year,
		Scale:     doc.Scale,
		Condition: doc.Condition,
		Status:    models.CanonicalStatus(doc.Status),
		Location:  doc.Location,
		URL:       doc.URL,
		Notes:     doc.Notes,
		Extra:     map[string]interface{}{models.ExtraLegacyID: doc.ID.Hex()},
	}
	if item.Status == "" {
		item.Status = models.StatusOwned
	}
	if doc.Owner != "" {
		item.Extra[models.ExtraOwnerID] = doc.Owner
	}
	if doc.CreatedAt != nil {
		item.CreatedAt = *doc.CreatedAt
	}
	return item
}

// purchaseFromDoc converts a purchase document for a resolved item.
// Order dates fall back to the purchase date, same as CSV imports.
func purchaseFromDoc(doc PurchaseDoc, itemID int64) *models.Purchase {
	orderDate := doc.OrderDate
	if orderDate == nil {
		orderDate = doc.PurchaseDate
	}
	return &models.Purchase{
		ItemID:       itemID,
		OrderDate:    orderDate,
		PurchaseDate: doc.PurchaseDate,
		ShipDate:     doc.ShipDate,
		Price:        doc.Price,
		Tax:          doc.Tax,
		Shipping:     doc.Shipping,
		Currency:     doc.Currency,
		OrderNumber:  doc.OrderNumber,
		Quantity:     doc.Quantity,
		Notes:        doc.Notes,
	}
}

// normalizeLinks drops blank names and collapses duplicates from an
// embedded character list. Exactly one surviving link is primary: the
// first marked one, or the first link when none is marked.
func normalizeLinks(links []LinkDoc) []LinkDoc {
	var (
		out     []LinkDoc
		seen    = make(map[string]int)
		primary = false
	)
	for _, link := range links {
		name := strings.TrimSpace(link.Name)
		if name == "" {
			continue
		}

		if idx, ok := seen[strings.ToLower(name)]; ok {
			if link.Primary && !primary {
				out[idx].Primary = true
				primary = true
			}
			continue
		}

		link.Name = name
		link.Primary = link.Primary && !primary
		if link.Primary {
			primary = true
		}
		seen[strings.ToLower(name)] = len(out)
		out = append(out, link)
	}

	if !primary && len(out) > 0 {
		out[0].Primary = true
	}
	return out
}

func logProgress(msg string, attrs ...any) {
	logger.LogImport(msg, attrs...)
}
