package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Vendor struct {
	bun.BaseModel `bun:"table:vendors,alias:v"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type Purchase struct {
	bun.BaseModel `bun:"table:purchases,alias:p"`

	ID           int64      `bun:"id,pk,autoincrement"`
	ItemID       int64      `bun:"item_id,notnull"`
	VendorID     *int64     `bun:"vendor_id"`
	CollectionID *int64     `bun:"collection_id"`
	OrderDate    *time.Time `bun:"order_date"`
	PurchaseDate *time.Time `bun:"purchase_date"`
	ShipDate     *time.Time `bun:"ship_date"`
	Price        *float64   `bun:"price"`
	Tax          *float64   `bun:"tax"`
	Shipping     *float64   `bun:"shipping"`
	Currency     string     `bun:"currency,type:text,default:''"`
	OrderNumber  string     `bun:"order_number,type:text,default:''"`
	Quantity     int        `bun:"quantity,notnull,default:1"`
	Notes        string     `bun:"notes,type:text,default:''"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`

	// Relations
	Item       *Item       `bun:"rel:belongs-to,join:item_id=id"`
	Vendor     *Vendor     `bun:"rel:belongs-to,join:vendor_id=id"`
	Collection *Collection `bun:"rel:belongs-to,join:collection_id=id"`
}

// Total sums price, tax and shipping, treating absent parts as zero.
func (p *Purchase) Total() float64 {
	var total float64
	for _, v := range []*float64{p.Price, p.Tax, p.Shipping} {
		if v != nil {
			total += *v
		}
	}
	return total
}

// EffectiveCurrency returns the purchase currency, defaulting to USD.
func (p *Purchase) EffectiveCurrency() string {
	if p.Currency == "" {
		return "USD"
	}
	return p.Currency
}
