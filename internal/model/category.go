package model

import "time"

// EntityCategory is the entity-type discriminator used by the short-id
// mapping table. Categories are the only mapped entity today, but the table
// is keyed on (user_id, type, short_id) so other kinds can be added without
// colliding sequences.
const EntityCategory = "category"

// Category represents a named, possibly-nested folder of bookmarks.
//
// ParentID is nil for root categories. The parent relation, restricted to
// one user's categories, is always a forest: a category cannot be its own
// ancestor and cross-user parent references are forbidden. Both rules are
// enforced by the category service on create/reparent.
type Category struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Name      string    `json:"name"      db:"name"`
	ParentID  *string   `json:"parentId"  db:"parent_id"`
	IsPublic  bool      `json:"isPublic"  db:"is_public"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRow is one row of the recursive tree query: a Category annotated
// with its resolved short id (left-joined from the mapping table) and its
// depth. Level exists only so the query can order rows parents-before-
// children; the materializer never reads it.
type CategoryRow struct {
	Category
	ShortID int64 `json:"shortId" db:"short_id"`
	Level   int   `json:"-"       db:"level"`
}

// TreeCategory is a Category enriched for presentation. It is derived, never
// persisted: SubCategories and ItemCount are recomputed on every tree build,
// and IsSubMenuOpen lives only in the cached tree.
//
// ItemCount is the number of direct children, not total descendants.
type TreeCategory struct {
	Category
	ShortID       int64           `json:"shortId"`
	SubCategories []*TreeCategory `json:"subCategories"`
	ItemCount     int             `json:"itemCount"`
	IsSubMenuOpen bool            `json:"isSubMenuOpen"`
}

// ShortIDMapping assigns a compact per-user integer to a UUID-keyed entity,
// so share links can read /share/alice/3 instead of /share/alice/<uuid>.
//
// For a given (UserID, Type), ShortID values are strictly increasing and
// never reused, even after the mapped entity is deleted: the allocator always
// takes MAX(short_id)+1 over every mapping ever created for that pair. A
// mapping row is inserted in the same transaction as the category it maps and
// is never regenerated later.
type ShortIDMapping struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Type      string    `json:"type"      db:"type"`
	ShortID   int64     `json:"shortId"   db:"short_id"`
	UUID      string    `json:"uuid"      db:"uuid"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
