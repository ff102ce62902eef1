package models

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	dbmodels "github.com/collectorsden/shelftrack/internal/database/models"
)

func testItem() *dbmodels.Item {
	year := 2019
	price := 419.99
	created := time.Date(2019, 9, 1, 12, 0, 0, 0, time.UTC)
	return &dbmodels.Item{
		ID:        7,
		Name:      "MP-44 Optimus Prime",
		SKU:       "MP-44",
		Year:      &year,
		Status:    dbmodels.StatusOwned,
		Notes:     "Third masterpiece mold",
		Extra: map[string]interface{}{
			dbmodels.ExtraOwnerID:     "kara",
			dbmodels.ExtraImportBatch: "b-123",
		},
		CreatedAt: created,
		UpdatedAt: created,
		Company:   &dbmodels.Company{ID: 1, Name: "Takara Tomy"},
		Line:      &dbmodels.Line{ID: 2, Name: "Masterpiece"},
		Series:    &dbmodels.Series{ID: 3, Name: "Transformers"},
		CharacterLinks: []*dbmodels.ItemCharacter{
			{
				ItemID:      7,
				CharacterID: 11,
				IsPrimary:   true,
				Character: &dbmodels.Character{
					ID:      11,
					Name:    "Optimus Prime",
					Faction: &dbmodels.Faction{ID: 1, Name: "Autobot"},
				},
			},
			{
				ItemID:      7,
				CharacterID: 12,
				Role:        "drone",
				Character:   &dbmodels.Character{ID: 12, Name: "Roller"},
			},
		},
		Tags: []*dbmodels.ItemTag{
			{ItemID: 7, TagID: 1, Tag: &dbmodels.Tag{ID: 1, Name: "grail"}},
		},
		Photos: []*dbmodels.ItemPhoto{
			{ID: 31, ItemID: 7, ObjectKey: "items/7/abc.jpg", ContentType: "image/jpeg", Size: 2048},
		},
		Purchases: []*dbmodels.Purchase{
			{
				ID:       41,
				ItemID:   7,
				Price:    &price,
				Currency: "JPY",
				Quantity: 1,
				Vendor:   &dbmodels.Vendor{ID: 5, Name: "HLJ"},
			},
		},
	}
}

func Test_NewItemSummary(t *testing.T) {
	got := NewItemSummary(testItem())

	if got.ID != 7 || got.Name != "MP-44 Optimus Prime" || got.Status != dbmodels.StatusOwned {
		t.Errorf("NewItemSummary() = %+v", got)
	}
	if got.Company != "Takara Tomy" || got.Line != "Masterpiece" {
		t.Errorf("NewItemSummary() classification = %q / %q", got.Company, got.Line)
	}
	if got.PrimaryCharacter != "Optimus Prime" {
		t.Errorf("NewItemSummary() primary character = %q", got.PrimaryCharacter)
	}
	if got.Characters != "Optimus Prime |primary, Roller |drone" {
		t.Errorf("NewItemSummary() characters = %q", got.Characters)
	}
}

func Test_NewItemSummary_bare_item(t *testing.T) {
	got := NewItemSummary(&dbmodels.Item{ID: 1, Name: "Grimlock", Status: dbmodels.StatusOwned})

	if got.Company != "" || got.Line != "" || got.PrimaryCharacter != "" || got.Characters != "" {
		t.Errorf("NewItemSummary() = %+v, want empty classification", got)
	}
}

func Test_NewItemDetail(t *testing.T) {
	item := testItem()
	got := NewItemDetail(item, func(photo *dbmodels.ItemPhoto) string {
		return fmt.Sprintf("https://cdn.example.com/%s", photo.ObjectKey)
	})

	if got.Owner != "kara" || got.ImportBatch != "b-123" {
		t.Errorf("NewItemDetail() markers = %q / %q", got.Owner, got.ImportBatch)
	}
	if got.Series != "Transformers" {
		t.Errorf("NewItemDetail() series = %q", got.Series)
	}

	wantLinks := []CharacterLinkView{
		{CharacterID: 11, Name: "Optimus Prime", IsPrimary: true, Faction: "Autobot"},
		{CharacterID: 12, Name: "Roller", Role: "drone"},
	}
	if !reflect.DeepEqual(got.Links, wantLinks) {
		t.Errorf("NewItemDetail() links = %+v, want %+v", got.Links, wantLinks)
	}
	if !reflect.DeepEqual(got.Tags, []string{"grail"}) {
		t.Errorf("NewItemDetail() tags = %v", got.Tags)
	}
	if len(got.Photos) != 1 || got.Photos[0].URL != "https://cdn.example.com/items/7/abc.jpg" {
		t.Errorf("NewItemDetail() photos = %+v", got.Photos)
	}
	if len(got.Purchases) != 1 || got.Purchases[0].Vendor != "HLJ" {
		t.Errorf("NewItemDetail() purchases = %+v", got.Purchases)
	}
}

func Test_NewItemDetail_nil_photo_url(t *testing.T) {
	got := NewItemDetail(testItem(), nil)
	if got.Photos[0].URL != "" {
		t.Errorf("NewItemDetail() photo URL = %q, want empty without storage", got.Photos[0].URL)
	}
}

func Test_NewPurchaseView(t *testing.T) {
	price := 49.5
	tax := 4.25
	order := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	purchase := &dbmodels.Purchase{
		ID:        41,
		ItemID:    7,
		OrderDate: &order,
		Price:     &price,
		Tax:       &tax,
		Currency:  "USD",
		Quantity:  2,
		Vendor:    &dbmodels.Vendor{ID: 5, Name: "BBTS"},
	}

	got := NewPurchaseView(purchase)

	if got.Vendor != "BBTS" || got.OrderDate != "2024-02-01" || got.PurchaseDate != "" {
		t.Errorf("NewPurchaseView() = %+v", got)
	}
	if got.Total != 53.75 {
		t.Errorf("NewPurchaseView() total = %v, want 53.75", got.Total)
	}
}

func Test_NewPageMeta(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int
		want     PageMeta
	}{
		{
			name: "Middle page", page: 2, pageSize: 25, total: 60,
			want: PageMeta{Page: 2, PageSize: 25, Total: 60, TotalPages: 3, HasNext: true, HasPrev: true},
		},
		{
			name: "First page of one", page: 1, pageSize: 25, total: 10,
			want: PageMeta{Page: 1, PageSize: 25, Total: 10, TotalPages: 1},
		},
		{
			name: "Empty result", page: 1, pageSize: 25, total: 0,
			want: PageMeta{Page: 1, PageSize: 25},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPageMeta(tt.page, tt.pageSize, tt.total); !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("NewPageMeta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
