package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tg"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type ItemTag struct {
	bun.BaseModel `bun:"table:item_tags,alias:itg"`

	ItemID int64 `bun:"item_id,pk"`
	TagID  int64 `bun:"tag_id,pk"`

	// Relations
	Tag *Tag `bun:"rel:belongs-to,join:tag_id=id"`
}
