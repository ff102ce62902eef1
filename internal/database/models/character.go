package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Faction struct {
	bun.BaseModel `bun:"table:factions,alias:f"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:tm"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Character is a depicted fictional character. Names are unique and
// matched case-sensitively; the faction is a hint that gets backfilled
// the first time an import or edit supplies one.
type Character struct {
	bun.BaseModel `bun:"table:characters,alias:ch"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	FactionID *int64    `bun:"faction_id"`
	Aliases   string    `bun:"aliases,type:text,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	// Relations
	Faction *Faction `bun:"rel:belongs-to,join:faction_id=id"`
}

type CharacterTeam struct {
	bun.BaseModel `bun:"table:character_teams,alias:ct"`

	CharacterID int64 `bun:"character_id,pk"`
	TeamID      int64 `bun:"team_id,pk"`

	// Relations
	Character *Character `bun:"rel:belongs-to,join:character_id=id"`
	Team      *Team      `bun:"rel:belongs-to,join:team_id=id"`
}
