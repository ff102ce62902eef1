// Package importer loads collection spreadsheets exported as CSV into
// the normalized tables. Header names are matched against an alias map
// so exports from different spreadsheet layouts land on the same
// logical fields.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/logger"
	"github.com/collectorsden/shelftrack/internal/services"
)

// ErrFallbackTarget is returned when an import would write into the
// built-in development database without an explicit override.
var ErrFallbackTarget = errors.New(
	"refusing to import into the fallback database; configure a real target or pass --allow-fallback-db")

// fieldAliases maps each logical field to the header spellings that
// feed it, in matching priority. Fields resolve independently, so two
// fields may end up reading the same column (a "source" header feeds
// both series and vendor when nothing more specific is present).
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{"name", []string{"name", "figure", "character", "title"}},
	{"company", []string{"company", "manufacturer", "brand"}},
	{"line", []string{"line", "series (product line)", "sub-line", "subline", "brand line"}},
	{"series", []string{"series", "media", "source"}},
	{"type", []string{"type", "kind"}},
	{"category", []string{"category", "class", "scale category"}},
	{"sku", []string{"sku", "code", "id", "figure id"}},
	{"version", []string{"version", "release", "variant"}},
	{"year", []string{"year", "release year"}},
	{"order_date", []string{"order date", "ordered"}},
	{"purchase_date", []string{"purchase date", "bought", "date"}},
	{"ship_date", []string{"ship date", "shipped"}},
	{"price", []string{"price", "paid", "cost"}},
	{"tax", []string{"tax", "sales tax"}},
	{"shipping", []string{"shipping", "postage"}},
	{"currency", []string{"currency"}},
	{"order_number", []string{"order", "order number"}},
	{"vendor", []string{"vendor", "store", "source", "retailer", "marketplace"}},
	{"condition", []string{"condition", "state"}},
	{"status", []string{"status", "owned/sold/preorder", "owned", "preorder", "sold", "wishlist"}},
	{"location", []string{"location", "shelf", "bin", "box"}},
	{"url", []string{"url", "link"}},
	{"characters", []string{"characters", "character list", "additional characters"}},
	{"faction", []string{"faction", "allegiance"}},
	{"notes", []string{"notes", "comments"}},
}

var dateFormats = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"2006/1/2",
	"2-Jan-2006",
}

var moneyCleaner = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", " ", "")

// Options configures one import run.
type Options struct {
	// File is the CSV path. Ignored by ImportReader.
	File string
	// Owner stamps every imported item's extra["owner_id"].
	Owner string
	// DefaultCurrency applies to purchases that carry data but no
	// currency column value. Empty falls back to the configured
	// import default.
	DefaultCurrency string
	// DryRun parses and counts without writing anything.
	DryRun bool
	// AllowFallbackDB permits writing into the built-in development
	// database configuration.
	AllowFallbackDB bool
}

// Result summarizes an import run. On error it still reflects the rows
// processed before the failure.
type Result struct {
	BatchID          string `json:"batch_id"`
	RowsRead         int    `json:"rows_read"`
	ItemsCreated     int    `json:"items_created"`
	PurchasesCreated int    `json:"purchases_created"`
	RowsSkipped      int    `json:"rows_skipped"`
}

type Importer struct {
	cfg   *config.Config
	items *services.ItemService
}

func NewImporter(cfg *config.Config, db *database.DB) *Importer {
	return &Importer{
		cfg:   cfg,
		items: services.NewItemService(db),
	}
}

// Run imports the CSV named in opts. Each row is written in its own
// transaction, so a failure keeps the rows already imported and reports
// the offending row number.
func (imp *Importer) Run(ctx context.Context, opts Options) (*Result, error) {
	if imp.cfg.DB.IsDefaultTarget() && !opts.AllowFallbackDB {
		return nil, ErrFallbackTarget
	}

	file, err := os.Open(opts.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	return imp.ImportReader(ctx, file, opts)
}

// ImportReader imports CSV data from r. Exposed separately so dry runs
// and tests can feed in-memory data.
func (imp *Importer) ImportReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV has no header row")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	mapping := mapHeader(header)
	if _, ok := mapping["name"]; !ok {
		return nil, errors.New("CSV has no recognizable name column")
	}

	currency := opts.DefaultCurrency
	if currency == "" {
		currency = imp.cfg.Import.DefaultCurrency
	}

	result := &Result{BatchID: uuid.New().String()}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("row %d: failed to read CSV: %w", result.RowsRead+1, err)
		}
		result.RowsRead++

		row := newRow(record, mapping)
		if row.get("name") == "" {
			result.RowsSkipped++
			continue
		}

		input, purchase := buildInputs(row, currency)
		input.Owner = opts.Owner
		input.ImportBatch = result.BatchID

		result.ItemsCreated++
		if purchase != nil {
			result.PurchasesCreated++
		}
		if opts.DryRun {
			continue
		}

		if _, err := imp.items.CreateWithPurchase(ctx, input, purchase); err != nil {
			return result, fmt.Errorf("row %d (%s): %w", result.RowsRead, input.Name, err)
		}
	}

	logger.LogImport("CSV import finished",
		"batch_id", result.BatchID,
		"rows_read", result.RowsRead,
		"items_created", result.ItemsCreated,
		"purchases_created", result.PurchasesCreated,
		"rows_skipped", result.RowsSkipped,
		"dry_run", opts.DryRun,
	)
	return result, nil
}

// mapHeader resolves each logical field to a column index. The first
// alias present in the header wins; the first occurrence of a repeated
// header name wins.
func mapHeader(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, cell := range header {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\uFEFF")
		}
		name := normalizeHeader(cell)
		if name == "" {
			continue
		}
		if _, seen := byName[name]; !seen {
			byName[name] = i
		}
	}

	mapping := make(map[string]int, len(fieldAliases))
	for _, fa := range fieldAliases {
		for _, alias := range fa.aliases {
			if idx, ok := byName[normalizeHeader(alias)]; ok {
				mapping[fa.field] = idx
				break
			}
		}
	}
	return mapping
}

// normalizeHeader lowercases and collapses whitespace so "Ship_Date",
// "ship date" and " SHIP  DATE " all resolve alike.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}

// row gives field-name access to one CSV record. Records may be ragged;
// out-of-range columns read as empty.
type row struct {
	record  []string
	mapping map[string]int
}

func newRow(record []string, mapping map[string]int) row {
	return row{record: record, mapping: mapping}
}

func (r row) get(field string) string {
	idx, ok := r.mapping[field]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// has reports whether the field maps to a column at all, regardless of
// the value. Distinguishes a missing characters column from an empty
// one.
func (r row) has(field string) bool {
	_, ok := r.mapping[field]
	return ok
}

// buildInputs converts one CSV row into the service-layer payloads. The
// purchase is nil when the row carries no purchase data at all.
func buildInputs(r row, defaultCurrency string) (services.ItemInput, *services.PurchaseInput) {
	input := services.ItemInput{
		Name:      r.get("name"),
		SKU:       r.get("sku"),
		Version:   r.get("version"),
		Year:      parseYear(r.get("year")),
		Condition: r.get("condition"),
		Status:    models.CanonicalStatus(r.get("status")),
		Location:  r.get("location"),
		URL:       r.get("url"),
		Notes:     r.get("notes"),
		Company:   r.get("company"),
		Line:      r.get("line"),
		Series:    r.get("series"),
		ItemType:  r.get("type"),
		Category:  r.get("category"),
		Faction:   r.get("faction"),
	}
	if r.has("characters") {
		list := r.get("characters")
		input.Characters = &list
	}

	orderDate := parseDate(r.get("order_date"))
	purchaseDate := parseDate(r.get("purchase_date"))
	if orderDate == nil {
		orderDate = purchaseDate
	}

	purchase := services.PurchaseInput{
		Vendor:       r.get("vendor"),
		OrderDate:    orderDate,
		PurchaseDate: purchaseDate,
		ShipDate:     parseDate(r.get("ship_date")),
		Price:        parseMoney(r.get("price")),
		Tax:          parseMoney(r.get("tax")),
		Shipping:     parseMoney(r.get("shipping")),
		Currency:     r.get("currency"),
		OrderNumber:  r.get("order_number"),
	}
	if !purchase.HasData() {
		return input, nil
	}
	if purchase.Currency == "" {
		purchase.Currency = defaultCurrency
	}
	return input, &purchase
}

// parseDate tries the accepted spreadsheet date formats in order.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseMoney strips currency symbols and separators before parsing.
func parseMoney(s string) *float64 {
	s = moneyCleaner.Replace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseYear(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
