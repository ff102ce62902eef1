package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusOwned    = "Owned"
	StatusPreorder = "Preorder"
	StatusSold     = "Sold"
	StatusWishlist = "Wishlist"
)

// Keys recognized inside Item.Extra.
const (
	ExtraOwnerID     = "owner_id"
	ExtraImportBatch = "import_batch"
	ExtraLegacyID    = "legacy_id"
)

// ValidStatus reports whether s is one of the item status choices.
func ValidStatus(s string) bool {
	switch s {
	case StatusOwned, StatusPreorder, StatusSold, StatusWishlist:
		return true
	}
	return false
}

// CanonicalStatus folds case variants of the status choices; anything
// else passes through verbatim so unusual statuses survive imports.
func CanonicalStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owned":
		return StatusOwned
	case "preorder", "pre-order":
		return StatusPreorder
	case "sold":
		return StatusSold
	case "wishlist":
		return StatusWishlist
	}
	return s
}

type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID        int64                  `bun:"id,pk,autoincrement"`
	Name      string                 `bun:"name,notnull"`
	SKU       string                 `bun:"sku,type:text,default:''"`
	Version   string                 `bun:"version,type:text,default:''"`
	Year      *int                   `bun:"year"`
	Scale     string                 `bun:"scale,type:text,default:''"`
	Condition string                 `bun:"condition,type:text,default:''"`
	Status    string                 `bun:"status,notnull,default:'Owned'"`
	Location  string                 `bun:"location,type:text,default:''"`
	URL       string                 `bun:"url,type:text,default:''"`
	Notes     string                 `bun:"notes,type:text,default:''"`
	Extra     map[string]interface{} `bun:"extra,type:jsonb"`

	CompanyID  *int64 `bun:"company_id"`
	LineID     *int64 `bun:"line_id"`
	SeriesID   *int64 `bun:"series_id"`
	ItemTypeID *int64 `bun:"item_type_id"`
	CategoryID *int64 `bun:"category_id"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	// Relations
	Company        *Company         `bun:"rel:belongs-to,join:company_id=id"`
	Line           *Line            `bun:"rel:belongs-to,join:line_id=id"`
	Series         *Series          `bun:"rel:belongs-to,join:series_id=id"`
	ItemType       *ItemType        `bun:"rel:belongs-to,join:item_type_id=id"`
	Category       *Category        `bun:"rel:belongs-to,join:category_id=id"`
	CharacterLinks []*ItemCharacter `bun:"rel:has-many,join:id=item_id"`
	Tags           []*ItemTag       `bun:"rel:has-many,join:id=item_id"`
	Photos         []*ItemPhoto     `bun:"rel:has-many,join:id=item_id"`
	Purchases      []*Purchase      `bun:"rel:has-many,join:id=item_id"`
}

// OwnerID returns the owner marker stored in Extra, if any.
func (i *Item) OwnerID() string {
	if i.Extra == nil {
		return ""
	}
	if v, ok := i.Extra[ExtraOwnerID].(string); ok {
		return v
	}
	return ""
}

// ImportBatch returns the import run marker stored in Extra, if any.
func (i *Item) ImportBatch() string {
	if i.Extra == nil {
		return ""
	}
	if v, ok := i.Extra[ExtraImportBatch].(string); ok {
		return v
	}
	return ""
}

// ItemCharacter links an item to a depicted character. At most one
// link per item carries IsPrimary.
type ItemCharacter struct {
	bun.BaseModel `bun:"table:item_characters,alias:ic"`

	ItemID      int64  `bun:"item_id,pk"`
	CharacterID int64  `bun:"character_id,pk"`
	IsPrimary   bool   `bun:"is_primary,notnull,default:false"`
	Role        string `bun:"role,type:text,default:''"`

	// Relations
	Item      *Item      `bun:"rel:belongs-to,join:item_id=id"`
	Character *Character `bun:"rel:belongs-to,join:character_id=id"`
}

type ItemPhoto struct {
	bun.BaseModel `bun:"table:item_photos,alias:ip"`

	ID          int64     `bun:"id,pk,autoincrement"`
	ItemID      int64     `bun:"item_id,notnull"`
	ObjectKey   string    `bun:"object_key,notnull"`
	ContentType string    `bun:"content_type,type:text,default:''"`
	Size        int64     `bun:"size,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
