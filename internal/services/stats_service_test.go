package services

import (
	"reflect"
	"testing"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

func floatPtr(v float64) *float64 { return &v }

func Test_BuildOverview(t *testing.T) {
	hasbro := &models.Company{ID: 1, Name: "Hasbro"}
	takara := &models.Company{ID: 2, Name: "Takara Tomy"}

	items := []*models.Item{
		{
			ID: 1, Name: "Optimus Prime", Status: models.StatusOwned, Company: hasbro,
			Purchases: []*models.Purchase{
				// Tax and shipping stay out of the overview totals.
				{Price: floatPtr(49.99), Tax: floatPtr(4.50), Shipping: floatPtr(5.50), Currency: "USD"},
			},
		},
		{
			ID: 2, Name: "Megatron", Status: models.StatusOwned, Company: takara,
			Purchases: []*models.Purchase{
				{Price: floatPtr(8800), Currency: "JPY"},
				{Price: floatPtr(12.25)},
				{Currency: "EUR"},
			},
		},
		{ID: 3, Name: "Rodimus", Status: models.StatusPreorder, Company: hasbro},
		{ID: 4, Name: "Mystery figure", Status: models.StatusWishlist},
		{ID: 5, Name: "Shelf filler"},
	}

	got := BuildOverview(items)

	want := &CollectionOverview{
		TotalItems:     5,
		TotalPurchases: 4,
		StatusCounts: map[string]int{
			models.StatusOwned:    2,
			models.StatusPreorder: 1,
			models.StatusWishlist: 1,
			"Unknown":             1,
		},
		CompanyCounts: map[string]int{
			"Hasbro":      2,
			"Takara Tomy": 1,
			"Unbranded":   2,
		},
		CurrencyTotals: map[string]float64{
			"USD": 62.24,
			"JPY": 8800,
		},
	}

	if got.TotalItems != want.TotalItems || got.TotalPurchases != want.TotalPurchases {
		t.Errorf("BuildOverview() totals = %d/%d, want %d/%d",
			got.TotalItems, got.TotalPurchases, want.TotalItems, want.TotalPurchases)
	}
	if !reflect.DeepEqual(got.StatusCounts, want.StatusCounts) {
		t.Errorf("BuildOverview() status counts = %v, want %v", got.StatusCounts, want.StatusCounts)
	}
	if !reflect.DeepEqual(got.CompanyCounts, want.CompanyCounts) {
		t.Errorf("BuildOverview() company counts = %v, want %v", got.CompanyCounts, want.CompanyCounts)
	}
	if len(got.CurrencyTotals) != len(want.CurrencyTotals) {
		t.Errorf("BuildOverview() currency totals = %v, want %v", got.CurrencyTotals, want.CurrencyTotals)
	}
	for currency, total := range want.CurrencyTotals {
		if diff := got.CurrencyTotals[currency] - total; diff > 0.001 || diff < -0.001 {
			t.Errorf("BuildOverview() %s total = %v, want %v", currency, got.CurrencyTotals[currency], total)
		}
	}
}

func Test_BuildOverview_empty(t *testing.T) {
	got := BuildOverview(nil)
	if got.TotalItems != 0 || got.TotalPurchases != 0 {
		t.Errorf("BuildOverview(nil) totals = %d/%d, want 0/0", got.TotalItems, got.TotalPurchases)
	}
	if len(got.StatusCounts) != 0 || len(got.CompanyCounts) != 0 || len(got.CurrencyTotals) != 0 {
		t.Errorf("BuildOverview(nil) expected empty maps, got %+v", got)
	}
}

func Test_CollectionOverview_RenderedTotals(t *testing.T) {
	overview := &CollectionOverview{
		CurrencyTotals: map[string]float64{
			"USD": 59.9912,
			"JPY": 8800,
			"EUR": 10,
		},
	}

	want := []string{"EUR 10.00", "JPY 8800.00", "USD 59.99"}
	if got := overview.RenderedTotals(); !reflect.DeepEqual(got, want) {
		t.Errorf("RenderedTotals() = %v, want %v", got, want)
	}
}
