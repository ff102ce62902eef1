package migration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CharacterDoc is a character document in the predecessor app's
// MongoDB database.
type CharacterDoc struct {
	ID      primitive.ObjectID `bson:"_id"`
	Name    string             `bson:"name"`
	Faction string             `bson:"faction,omitempty"`
	Aliases []string           `bson:"aliases,omitempty"`
}

// LinkDoc is one entry of an item document's embedded character list.
type LinkDoc struct {
	Name    string `bson:"name"`
	Primary bool   `bson:"primary,omitempty"`
	Role    string `bson:"role,omitempty"`
}

// ItemDoc is an item document. Classification is stored denormalized
// as plain names; the migration resolves them into the lookup tables.
type ItemDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	SKU        string             `bson:"sku,omitempty"`
	Version    string             `bson:"version,omitempty"`
	Year       *int               `bson:"year,omitempty"`
	Scale      string             `bson:"scale,omitempty"`
	Condition  string             `bson:"condition,omitempty"`
	Status     string             `bson:"status,omitempty"`
	Location   string             `bson:"location,omitempty"`
	URL        string             `bson:"url,omitempty"`
	Notes      string             `bson:"notes,omitempty"`
	Company    string             `bson:"company,omitempty"`
	Line       string             `bson:"line,omitempty"`
	Series     string             `bson:"series,omitempty"`
	Type       string             `bson:"type,omitempty"`
	Category   string             `bson:"category,omitempty"`
	Characters []LinkDoc          `bson:"characters,omitempty"`
	Tags       []string           `bson:"tags,omitempty"`
	Owner      string             `bson:"owner,omitempty"`
	CreatedAt  *time.Time         `bson:"created_at,omitempty"`
}

// PurchaseDoc is a purchase document, tied to its item by ObjectID.
type PurchaseDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	ItemID       primitive.ObjectID `bson:"item_id"`
	Vendor       string             `bson:"vendor,omitempty"`
	OrderDate    *time.Time         `bson:"order_date,omitempty"`
	PurchaseDate *time.Time         `bson:"purchase_date,omitempty"`
	ShipDate     *time.Time         `bson:"ship_date,omitempty"`
	Price        *float64           `bson:"price,omitempty"`
	Tax          *float64           `bson:"tax,omitempty"`
	Shipping     *float64           `bson:"shipping,omitempty"`
	Currency     string             `bson:"currency,omitempty"`
	OrderNumber  string             `bson:"order_number,omitempty"`
	Quantity     int                `bson:"qty,omitempty"`
	Notes        string             `bson:"notes,omitempty"`
}

// TableStats tracks one table's progress through a migration run.
type TableStats struct {
	Read     int `json:"read"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

// Stats summarizes a whole migration run, including the post-run row
// counts used to verify the target database.
type Stats struct {
	Characters TableStats `json:"characters"`
	Items      TableStats `json:"items"`
	Links      TableStats `json:"links"`
	Purchases  TableStats `json:"purchases"`

	VerifiedItems      int `json:"verified_items"`
	VerifiedCharacters int `json:"verified_characters"`
	VerifiedPurchases  int `json:"verified_purchases"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration is the wall time the run took.
func (s *Stats) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
