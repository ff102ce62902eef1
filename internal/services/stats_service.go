package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
)

// CollectionOverview aggregates the whole (optionally owner-scoped)
// collection for the overview endpoint.
type CollectionOverview struct {
	TotalItems     int                `json:"total_items"`
	TotalPurchases int                `json:"total_purchases"`
	StatusCounts   map[string]int     `json:"status_counts"`
	CompanyCounts  map[string]int     `json:"company_counts"`
	CurrencyTotals map[string]float64 `json:"currency_totals"`
}

// RenderedTotals formats the per-currency spend as "USD 59.99" lines,
// sorted by currency code.
func (o *CollectionOverview) RenderedTotals() []string {
	currencies := make([]string, 0, len(o.CurrencyTotals))
	for currency := range o.CurrencyTotals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	lines := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		lines = append(lines, fmt.Sprintf("%s %.2f", currency, o.CurrencyTotals[currency]))
	}
	return lines
}

// BuildOverview folds loaded items and their purchases into the
// overview aggregates. Items without a company count under "Unbranded",
// items without a status under "Unknown". Currency totals sum purchase
// prices only; purchases without a price are counted but add nothing.
func BuildOverview(items []*models.Item) *CollectionOverview {
	overview := &CollectionOverview{
		StatusCounts:   make(map[string]int),
		CompanyCounts:  make(map[string]int),
		CurrencyTotals: make(map[string]float64),
	}

	for _, item := range items {
		overview.TotalItems++

		status := item.Status
		if status == "" {
			status = "Unknown"
		}
		overview.StatusCounts[status]++

		companyName := "Unbranded"
		if item.Company != nil {
			companyName = item.Company.Name
		}
		overview.CompanyCounts[companyName]++

		for _, purchase := range item.Purchases {
			overview.TotalPurchases++
			if purchase.Price == nil {
				continue
			}
			overview.CurrencyTotals[purchase.EffectiveCurrency()] += *purchase.Price
		}
	}
	return overview
}

// DashboardStats carries the headline numbers for the dashboard.
type DashboardStats struct {
	TotalItems      int                `json:"total_items"`
	TotalCharacters int                `json:"total_characters"`
	TotalPurchases  int                `json:"total_purchases"`
	SpendByCurrency map[string]float64 `json:"spend_by_currency"`
}

type StatsService struct {
	db *database.DB
}

func NewStatsService(db *database.DB) *StatsService {
	return &StatsService{db: db}
}

// Overview loads every item (optionally one owner's) with its company
// and purchases and aggregates them.
func (s *StatsService) Overview(ctx context.Context, owner string) (*CollectionOverview, error) {
	items, err := repositories.NewItemRepository(s.db.BunDB()).GetAllDetailed(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for overview: %w", err)
	}
	return BuildOverview(items), nil
}

// Dashboard returns collection-wide totals.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	idb := s.db.BunDB()

	itemCount, err := repositories.NewItemRepository(idb).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	characterCount, err := repositories.NewCharacterRepository(idb).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count characters: %w", err)
	}
	purchaseCount, err := repositories.NewPurchaseRepository(idb).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	spend, err := s.spendByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalItems:      itemCount,
		TotalCharacters: characterCount,
		TotalPurchases:  purchaseCount,
		SpendByCurrency: spend,
	}, nil
}

// spendByCurrency aggregates purchase totals in SQL. Empty currencies
// coalesce to USD and absent money parts count as zero, matching
// Purchase.Total and Purchase.EffectiveCurrency.
func (s *StatsService) spendByCurrency(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryWithLog(ctx, `
		SELECT COALESCE(NULLIF(currency, ''), 'USD') AS currency,
		       SUM(COALESCE(price, 0) + COALESCE(tax, 0) + COALESCE(shipping, 0)) AS total
		FROM purchases
		GROUP BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate spend: %w", err)
	}
	defer rows.Close()

	spend := make(map[string]float64)
	for rows.Next() {
		var currency string
		var total float64
		if err := rows.Scan(&currency, &total); err != nil {
			return nil, fmt.Errorf("failed to scan spend row: %w", err)
		}
		spend[currency] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate spend: %w", err)
	}
	return spend, nil
}
