// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation today;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/hackerc/linkhub/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict when the
	// username or email is already taken.
	Create(ctx context.Context, user *model.User) error
	// UpsertGitHub inserts or updates a user keyed by their GitHub ID,
	// populating user.ID with the durable internal id either way.
	UpsertGitHub(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// CategoryRepository persists categories and their short-id mappings.
type CategoryRepository interface {
	// Create inserts the category row and its short-id mapping in one
	// transaction: the next short id for (user, "category") is read as
	// MAX(short_id)+1 inside that same transaction, and both inserts commit
	// together or not at all. On a short-id uniqueness violation (two
	// concurrent creations by the same user) it returns apperror.ErrConflict
	// and persists nothing; the caller retries from scratch.
	//
	// On success category.ID and timestamps are populated and the allocated
	// short id is returned.
	Create(ctx context.Context, category *model.Category) (shortID int64, err error)

	// ListRows returns every category of one user at every depth, annotated
	// with its resolved short id and a level counter used only for ordering
	// (parents before children, then creation order). Rows whose parent is
	// missing from the user's set still appear — the materializer decides
	// what to do with them.
	ListRows(ctx context.Context, userID string) ([]model.CategoryRow, error)

	GetByID(ctx context.Context, id string) (*model.Category, error)
	// GetByShortID resolves a (user, short id) pair through the mapping
	// table to the underlying category.
	GetByShortID(ctx context.Context, userID string, shortID int64) (*model.Category, error)
	// ListPublic returns a user's public categories, newest first.
	ListPublic(ctx context.Context, userID string) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	// Delete removes a category. The storage layer cascades the delete to
	// the whole subtree; short-id mappings are left in place so values are
	// never reallocated.
	Delete(ctx context.Context, id string) error
}

// BookmarkRepository persists bookmarks.
type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *model.Bookmark) error
	GetByID(ctx context.Context, id string) (*model.Bookmark, error)
	// ListByUser returns a user's bookmarks, optionally filtered to one
	// category. A nil categoryID means every bookmark (the "All Links"
	// bucket).
	ListByUser(ctx context.Context, userID string, categoryID *string) ([]model.Bookmark, error)
	// ListByCategory returns every bookmark of one category regardless of
	// session — used by the sharing resolver after the public check.
	ListByCategory(ctx context.Context, categoryID string) ([]model.Bookmark, error)
	Update(ctx context.Context, bookmark *model.Bookmark) error
	Delete(ctx context.Context, id string) error
}
