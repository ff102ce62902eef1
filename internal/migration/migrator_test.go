package migration

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

func Test_normalizeLinks(t *testing.T) {
	tests := []struct {
		name  string
		links []LinkDoc
		want  []LinkDoc
	}{
		{
			name:  "Empty list stays empty",
			links: nil,
			want:  nil,
		},
		{
			name:  "Single unmarked link becomes primary",
			links: []LinkDoc{{Name: "Jazz"}},
			want:  []LinkDoc{{Name: "Jazz", Primary: true}},
		},
		{
			name: "First marked link wins and later marks are dropped",
			links: []LinkDoc{
				{Name: "Arcee"},
				{Name: "Ultra Magnus", Primary: true},
				{Name: "Rodimus", Primary: true},
			},
			want: []LinkDoc{
				{Name: "Arcee"},
				{Name: "Ultra Magnus", Primary: true},
				{Name: "Rodimus"},
			},
		},
		{
			name: "Duplicate names collapse case-insensitively",
			links: []LinkDoc{
				{Name: "Bumblebee", Role: "driver"},
				{Name: "bumblebee"},
			},
			want: []LinkDoc{{Name: "Bumblebee", Primary: true, Role: "driver"}},
		},
		{
			name: "Duplicate with a mark claims the unclaimed flag",
			links: []LinkDoc{
				{Name: "Jazz"},
				{Name: "Prowl"},
				{Name: "Jazz", Primary: true},
			},
			want: []LinkDoc{
				{Name: "Jazz", Primary: true},
				{Name: "Prowl"},
			},
		},
		{
			name: "Blank names drop and whitespace trims",
			links: []LinkDoc{
				{Name: "  "},
				{Name: " Soundwave ", Role: "cassette deck"},
			},
			want: []LinkDoc{{Name: "Soundwave", Primary: true, Role: "cassette deck"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLinks(tt.links); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeLinks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_itemFromDoc(t *testing.T) {
	created := time.Date(2021, 4, 2, 10, 0, 0, 0, time.UTC)
	doc := ItemDoc{
		ID:        primitive.NewObjectID(),
		Name:      " MP-44 Optimus Prime ",
		SKU:       "MP-44",
		Status:    "owned",
		Owner:     "kara",
		CreatedAt: &created,
	}

	item := itemFromDoc(doc)

	if item.Name != "MP-44 Optimus Prime" {
		t.Errorf("itemFromDoc() name = %q", item.Name)
	}
	if item.Status != models.StatusOwned {
		t.Errorf("itemFromDoc() status = %q, want %q", item.Status, models.StatusOwned)
	}
	if item.Extra[models.ExtraLegacyID] != doc.ID.Hex() {
		t.Errorf("itemFromDoc() legacy id = %v, want %s", item.Extra[models.ExtraLegacyID], doc.ID.Hex())
	}
	if item.Extra[models.ExtraOwnerID] != "kara" {
		t.Errorf("itemFromDoc() owner = %v, want kara", item.Extra[models.ExtraOwnerID])
	}
	if !item.CreatedAt.Equal(created) {
		t.Errorf("itemFromDoc() created at = %v, want %v", item.CreatedAt, created)
	}
}

func Test_itemFromDoc_defaults(t *testing.T) {
	item := itemFromDoc(ItemDoc{ID: primitive.NewObjectID(), Name: "Grimlock"})

	if item.Status != models.StatusOwned {
		t.Errorf("itemFromDoc() status = %q, want default %q", item.Status, models.StatusOwned)
	}
	if _, ok := item.Extra[models.ExtraOwnerID]; ok {
		t.Error("itemFromDoc() stamped an owner for an ownerless doc")
	}
	if !item.CreatedAt.IsZero() {
		t.Errorf("itemFromDoc() created at = %v, want zero so the insert default applies", item.CreatedAt)
	}
}

func Test_purchaseFromDoc(t *testing.T) {
	purchaseDate := time.Date(2019, 8, 31, 0, 0, 0, 0, time.UTC)
	price := 419.99
	doc := PurchaseDoc{
		ID:           primitive.NewObjectID(),
		ItemID:       primitive.NewObjectID(),
		Vendor:       "HLJ",
		PurchaseDate: &purchaseDate,
		Price:        &price,
		Currency:     "JPY",
		Quantity:     2,
	}

	purchase := purchaseFromDoc(doc, 7)

	if purchase.ItemID != 7 {
		t.Errorf("purchaseFromDoc() item id = %d, want 7", purchase.ItemID)
	}
	if purchase.OrderDate == nil || !purchase.OrderDate.Equal(purchaseDate) {
		t.Errorf("purchaseFromDoc() order date = %v, want purchase-date fallback", purchase.OrderDate)
	}
	if purchase.Price == nil || *purchase.Price != price {
		t.Errorf("purchaseFromDoc() price = %v, want %v", purchase.Price, price)
	}
	if purchase.Currency != "JPY" || purchase.Quantity != 2 {
		t.Errorf("purchaseFromDoc() = %+v", purchase)
	}
}

func Test_planDryRun(t *testing.T) {
	existingID := primitive.NewObjectID()
	freshID := primitive.NewObjectID()
	orphanID := primitive.NewObjectID()

	m := &Migrator{
		itemIDs: map[string]int64{existingID.Hex(): 11},
	}

	characterDocs := []CharacterDoc{
		{Name: "Optimus Prime"},
		{Name: "  "},
	}
	itemDocs := []ItemDoc{
		{ID: existingID, Name: "Already migrated"},
		{ID: freshID, Name: "New item", Characters: []LinkDoc{{Name: "Optimus Prime"}, {Name: ""}}},
		{ID: primitive.NewObjectID(), Name: ""},
	}
	purchaseDocs := []PurchaseDoc{
		{ID: primitive.NewObjectID(), ItemID: freshID},
		{ID: primitive.NewObjectID(), ItemID: existingID},
		{ID: primitive.NewObjectID(), ItemID: orphanID},
	}

	m.planDryRun(characterDocs, itemDocs, purchaseDocs)

	if m.stats.Characters.Migrated != 1 || m.stats.Characters.Skipped != 1 {
		t.Errorf("planDryRun() characters = %+v", m.stats.Characters)
	}
	if m.stats.Items.Migrated != 1 || m.stats.Items.Skipped != 2 {
		t.Errorf("planDryRun() items = %+v", m.stats.Items)
	}
	if m.stats.Links.Read != 2 || m.stats.Links.Migrated != 1 {
		t.Errorf("planDryRun() links = %+v", m.stats.Links)
	}
	if m.stats.Purchases.Migrated != 1 || m.stats.Purchases.Skipped != 2 {
		t.Errorf("planDryRun() purchases = %+v", m.stats.Purchases)
	}
}
