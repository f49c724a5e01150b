package model

import "time"

// Bookmark is a saved link. Every bookmark belongs to exactly one user and
// to at most one category — a nil CategoryID means "uncategorized", which
// the UI presents as the synthetic "All Links" bucket.
//
// FaviconURL/OGImageURL/DomainName are filled by the metadata fetcher when
// the client asks for a preview; they are plain data here, the tree engine
// never looks at them.
type Bookmark struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"userId"       db:"user_id"`
	CategoryID   *string   `json:"categoryId"   db:"category_id"`
	Title        string    `json:"title"        db:"title"`
	URL          string    `json:"url"          db:"url"`
	Description  string    `json:"description"  db:"description"`
	FaviconURL   string    `json:"faviconUrl"   db:"favicon_url"`
	OGImageURL   string    `json:"ogImageUrl"   db:"og_image_url"`
	DomainName   string    `json:"domainName"   db:"domain_name"`
	ReadProgress int       `json:"readProgress" db:"read_progress"` // 0-100
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}
