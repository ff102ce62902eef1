package models

import (
	"strings"
	"time"

	dbmodels "github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/services"
)

// DateLayout is the wire format for all date fields.
const DateLayout = "2006-01-02"

// ItemRequest is the create/update payload for an item. Classification
// fields are free-text names. A missing characters key leaves the link
// set untouched; a present-but-empty one clears it, which is why the
// field is a pointer.
type ItemRequest struct {
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Version   string `json:"version"`
	Year      *int   `json:"year"`
	Scale     string `json:"scale"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
	Location  string `json:"location"`
	URL       string `json:"url"`
	Notes     string `json:"notes"`

	Company  string `json:"company"`
	Line     string `json:"line"`
	Series   string `json:"series"`
	ItemType string `json:"type"`
	Category string `json:"category"`

	Characters *string  `json:"characters"`
	Faction    string   `json:"faction"`
	Tags       []string `json:"tags"`

	Owner string `json:"owner"`
}

// ToInput converts the payload into a service input. The status is
// folded to its canonical casing here so handlers and importers agree
// on what lands in the database.
func (r *ItemRequest) ToInput() services.ItemInput {
	return services.ItemInput{
		Name:      strings.TrimSpace(r.Name),
		SKU:       r.SKU,
		Version:   r.Version,
		Year:      r.Year,
		Scale:     r.Scale,
		Condition: r.Condition,
		Status:    dbmodels.CanonicalStatus(r.Status),
		Location:  r.Location,
		URL:       r.URL,
		Notes:     r.Notes,

		Company:  r.Company,
		Line:     r.Line,
		Series:   r.Series,
		ItemType: r.ItemType,
		Category: r.Category,

		Characters: r.Characters,
		Faction:    r.Faction,
		Tags:       r.Tags,

		Owner: r.Owner,
	}
}

// PurchaseRequest is the payload for recording a purchase. Dates are
// "2006-01-02" strings; blank or unparseable ones come through as nil.
type PurchaseRequest struct {
	Vendor       string   `json:"vendor"`
	CollectionID *int64   `json:"collection_id"`
	OrderDate    string   `json:"order_date"`
	PurchaseDate string   `json:"purchase_date"`
	ShipDate     string   `json:"ship_date"`
	Price        *float64 `json:"price"`
	Tax          *float64 `json:"tax"`
	Shipping     *float64 `json:"shipping"`
	Currency     string   `json:"currency"`
	OrderNumber  string   `json:"order_number"`
	Quantity     int      `json:"quantity"`
	Notes        string   `json:"notes"`
}

// ToInput converts the payload into a service input. The quantity
// defaults to one and the order date falls back to the purchase date.
func (r *PurchaseRequest) ToInput() services.PurchaseInput {
	input := services.PurchaseInput{
		Vendor:       strings.TrimSpace(r.Vendor),
		CollectionID: r.CollectionID,
		OrderDate:    ParseDate(r.OrderDate),
		PurchaseDate: ParseDate(r.PurchaseDate),
		ShipDate:     ParseDate(r.ShipDate),
		Price:        r.Price,
		Tax:          r.Tax,
		Shipping:     r.Shipping,
		Currency:     strings.ToUpper(strings.TrimSpace(r.Currency)),
		OrderNumber:  r.OrderNumber,
		Quantity:     r.Quantity,
		Notes:        r.Notes,
	}
	if input.Quantity < 1 {
		input.Quantity = 1
	}
	if input.OrderDate == nil {
		input.OrderDate = input.PurchaseDate
	}
	return input
}

// CollectionRequest creates a named purchase grouping.
type CollectionRequest struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// ParseDate parses a wire-format date, returning nil for anything that
// does not parse.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
