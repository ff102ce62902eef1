package models

import (
	"time"

	"github.com/collectorsden/shelftrack/internal/characters"
	dbmodels "github.com/collectorsden/shelftrack/internal/database/models"
)

// CharacterLinkView renders one character link of an item, in
// presentation order.
type CharacterLinkView struct {
	CharacterID int64  `json:"character_id"`
	Name        string `json:"name"`
	IsPrimary   bool   `json:"is_primary"`
	Role        string `json:"role,omitempty"`
	Faction     string `json:"faction,omitempty"`
}

// ItemSummary is the list rendering of an item.
type ItemSummary struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	SKU              string    `json:"sku,omitempty"`
	Status           string    `json:"status"`
	Year             *int      `json:"year,omitempty"`
	Company          string    `json:"company,omitempty"`
	Line             string    `json:"line,omitempty"`
	PrimaryCharacter string    `json:"primary_character,omitempty"`
	Characters       string    `json:"characters,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ItemDetail is the full rendering of an item.
type ItemDetail struct {
	ItemSummary
	Version     string              `json:"version,omitempty"`
	Scale       string              `json:"scale,omitempty"`
	Condition   string              `json:"condition,omitempty"`
	Location    string              `json:"location,omitempty"`
	URL         string              `json:"url,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Series      string              `json:"series,omitempty"`
	ItemType    string              `json:"type,omitempty"`
	Category    string              `json:"category,omitempty"`
	Owner       string              `json:"owner,omitempty"`
	ImportBatch string              `json:"import_batch,omitempty"`
	Links       []CharacterLinkView `json:"character_links"`
	Tags        []string            `json:"tags"`
	Photos      []PhotoView         `json:"photos"`
	Purchases   []PurchaseView      `json:"purchases"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// PurchaseView renders a purchase with its resolved vendor name.
type PurchaseView struct {
	ID           int64    `json:"id"`
	ItemID       int64    `json:"item_id"`
	Vendor       string   `json:"vendor,omitempty"`
	CollectionID *int64   `json:"collection_id,omitempty"`
	OrderDate    string   `json:"order_date,omitempty"`
	PurchaseDate string   `json:"purchase_date,omitempty"`
	ShipDate     string   `json:"ship_date,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Tax          *float64 `json:"tax,omitempty"`
	Shipping     *float64 `json:"shipping,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	OrderNumber  string   `json:"order_number,omitempty"`
	Quantity     int      `json:"quantity"`
	Notes        string   `json:"notes,omitempty"`
	Total        float64  `json:"total"`
}

// PhotoView renders a stored photo with its public URL.
type PhotoView struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// CollectionView renders a purchase grouping with its member count.
type CollectionView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Owner         string    `json:"owner,omitempty"`
	PurchaseCount int       `json:"purchase_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// CharacterView renders a character with its faction name.
type CharacterView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Faction string `json:"faction,omitempty"`
	Aliases string `json:"aliases,omitempty"`
}

// ImportedItemView is one row of the imported-items report.
type ImportedItemView struct {
	ItemSummary
	ImportBatch string         `json:"import_batch"`
	Purchases   []PurchaseView `json:"purchases"`
}

// NewItemSummary renders an item for list responses. The character
// column shows the primary link's name and the full formatted list.
func NewItemSummary(item *dbmodels.Item) ItemSummary {
	summary := ItemSummary{
		ID:        item.ID,
		Name:      item.Name,
		SKU:       item.SKU,
		Status:    item.Status,
		Year:      item.Year,
		CreatedAt: item.CreatedAt,
	}
	if item.Company != nil {
		summary.Company = item.Company.Name
	}
	if item.Line != nil {
		summary.Line = item.Line.Name
	}
	if len(item.CharacterLinks) > 0 {
		summary.Characters = characters.FormatLinks(item.CharacterLinks)
		if primary := characters.PrimaryLink(item.CharacterLinks); primary != nil && primary.Character != nil {
			summary.PrimaryCharacter = primary.Character.Name
		}
	}
	return summary
}

// NewItemDetail renders an item with everything hanging off it. The
// photoURL callback turns object keys into public URLs; it may be nil
// when object storage is not configured.
func NewItemDetail(item *dbmodels.Item, photoURL func(*dbmodels.ItemPhoto) string) ItemDetail {
	detail := ItemDetail{
		ItemSummary: NewItemSummary(item),
		Version:     item.Version,
		Scale:       item.Scale,
		Condition:   item.Condition,
		Location:    item.Location,
		URL:         item.URL,
		Notes:       item.Notes,
		Owner:       item.OwnerID(),
		ImportBatch: item.ImportBatch(),
		Links:       make([]CharacterLinkView, 0, len(item.CharacterLinks)),
		Tags:        make([]string, 0, len(item.Tags)),
		Photos:      make([]PhotoView, 0, len(item.Photos)),
		Purchases:   make([]PurchaseView, 0, len(item.Purchases)),
		UpdatedAt:   item.UpdatedAt,
	}
	if item.Series != nil {
		detail.Series = item.Series.Name
	}
	if item.ItemType != nil {
		detail.ItemType = item.ItemType.Name
	}
	if item.Category != nil {
		detail.Category = item.Category.Name
	}

	for _, link := range item.CharacterLinks {
		view := CharacterLinkView{
			CharacterID: link.CharacterID,
			IsPrimary:   link.IsPrimary,
			Role:        link.Role,
		}
		if link.Character != nil {
			view.Name = link.Character.Name
			if link.Character.Faction != nil {
				view.Faction = link.Character.Faction.Name
			}
		}
		detail.Links = append(detail.Links, view)
	}
	for _, tag := range item.Tags {
		if tag.Tag != nil {
			detail.Tags = append(detail.Tags, tag.Tag.Name)
		}
	}
	for _, photo := range item.Photos {
		view := PhotoView{
			ID:          photo.ID,
			ContentType: photo.ContentType,
			Size:        photo.Size,
			CreatedAt:   photo.CreatedAt,
		}
		if photoURL != nil {
			view.URL = photoURL(photo)
		}
		detail.Photos = append(detail.Photos, view)
	}
	for _, purchase := range item.Purchases {
		detail.Purchases = append(detail.Purchases, NewPurchaseView(purchase))
	}
	return detail
}

// NewPurchaseView renders a purchase for responses.
func NewPurchaseView(purchase *dbmodels.Purchase) PurchaseView {
	view := PurchaseView{
		ID:           purchase.ID,
		ItemID:       purchase.ItemID,
		CollectionID: purchase.CollectionID,
		OrderDate:    formatDate(purchase.OrderDate),
		PurchaseDate: formatDate(purchase.PurchaseDate),
		ShipDate:     formatDate(purchase.ShipDate),
		Price:        purchase.Price,
		Tax:          purchase.Tax,
		Shipping:     purchase.Shipping,
		Currency:     purchase.Currency,
		OrderNumber:  purchase.OrderNumber,
		Quantity:     purchase.Quantity,
		Notes:        purchase.Notes,
		Total:        purchase.Total(),
	}
	if purchase.Vendor != nil {
		view.Vendor = purchase.Vendor.Name
	}
	return view
}

// NewCharacterView renders a character for responses.
func NewCharacterView(character *dbmodels.Character) CharacterView {
	view := CharacterView{
		ID:      character.ID,
		Name:    character.Name,
		Aliases: character.Aliases,
	}
	if character.Faction != nil {
		view.Faction = character.Faction.Name
	}
	return view
}

// NewCollectionView renders a collection with its purchase count.
func NewCollectionView(collection *dbmodels.Collection, purchaseCount int) CollectionView {
	return CollectionView{
		ID:            collection.ID,
		Name:          collection.Name,
		Owner:         collection.OwnerID,
		PurchaseCount: purchaseCount,
		CreatedAt:     collection.CreatedAt,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
