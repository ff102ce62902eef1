package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Company struct {
	bun.BaseModel `bun:"table:companies,alias:co"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Line is a product line within a company. Line names are not unique:
// two companies can reuse the same line name, so lookups match by name
// only and take the first row.
type Line struct {
	bun.BaseModel `bun:"table:lines,alias:l"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	CompanyID *int64    `bun:"company_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	// Relations
	Company *Company `bun:"rel:belongs-to,join:company_id=id"`
}
