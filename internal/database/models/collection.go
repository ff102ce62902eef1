package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Collection is a named, owner-scoped grouping of purchases.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	OwnerID   string    `bun:"owner_id,type:text,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	// Relations
	Purchases []*Purchase `bun:"rel:has-many,join:id=collection_id"`
}
