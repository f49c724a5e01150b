package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
	"github.com/hackerc/linkhub/internal/repository"
)

// compile-time check that *BookmarkRepo implements repository.BookmarkRepository
var _ repository.BookmarkRepository = (*BookmarkRepo)(nil)

// BookmarkRepo is the SQLite-backed bookmark repository.
type BookmarkRepo struct {
	db *DB
}

// Bookmarks returns the bookmark repository view of this database.
func (db *DB) Bookmarks() *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

const bookmarkColumns = `id, user_id, category_id, title, url, description,
	favicon_url, og_image_url, domain_name, read_progress, created_at, updated_at`

// Create inserts a new bookmark, generating its id and timestamps.
func (r *BookmarkRepo) Create(ctx context.Context, bookmark *model.Bookmark) error {
	now := time.Now()
	bookmark.ID = uuid.NewString()
	bookmark.CreatedAt = now
	bookmark.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO bookmarks (`+bookmarkColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bookmark.ID,
		bookmark.UserID,
		bookmark.CategoryID,
		bookmark.Title,
		bookmark.URL,
		bookmark.Description,
		bookmark.FaviconURL,
		bookmark.OGImageURL,
		bookmark.DomainName,
		bookmark.ReadProgress,
		bookmark.CreatedAt,
		bookmark.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting bookmark: %w", err)
	}

	return nil
}

// GetByID retrieves a single bookmark.
func (r *BookmarkRepo) GetByID(ctx context.Context, id string) (*model.Bookmark, error) {
	var b model.Bookmark
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`,
		id,
	).Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Title, &b.URL, &b.Description,
		&b.FaviconURL, &b.OGImageURL, &b.DomainName, &b.ReadProgress,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("bookmark", id)
		}
		return nil, fmt.Errorf("sqlite: getting bookmark %s: %w", id, err)
	}
	return &b, nil
}

// ListByUser returns one user's bookmarks, newest first, optionally filtered
// to one category. A nil categoryID is the "All Links" bucket: every
// bookmark, categorized or not.
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID string, categoryID *string) ([]model.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE user_id = ?`
	args := []any{userID}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryBookmarks(ctx, query, args...)
}

// ListByCategory returns every bookmark of one category regardless of owner
// session. Callers must have already decided the caller may see the
// category — the sharing resolver does its public check first.
func (r *BookmarkRepo) ListByCategory(ctx context.Context, categoryID string) ([]model.Bookmark, error) {
	return r.queryBookmarks(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks
		 WHERE category_id = ? ORDER BY created_at DESC`,
		categoryID,
	)
}

func (r *BookmarkRepo) queryBookmarks(ctx context.Context, query string, args ...any) ([]model.Bookmark, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks: %w", err)
	}
	defer rows.Close()

	out := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.CategoryID, &b.Title, &b.URL, &b.Description,
			&b.FaviconURL, &b.OGImageURL, &b.DomainName, &b.ReadProgress,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bookmark row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookmarks: %w", err)
	}

	return out, nil
}

// Update writes the mutable bookmark fields; RowsAffected detects not-found.
func (r *BookmarkRepo) Update(ctx context.Context, bookmark *model.Bookmark) error {
	bookmark.UpdatedAt = time.Now()

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE bookmarks
		 SET category_id = ?, title = ?, url = ?, description = ?,
		     favicon_url = ?, og_image_url = ?, domain_name = ?,
		     read_progress = ?, updated_at = ?
		 WHERE id = ?`,
		bookmark.CategoryID,
		bookmark.Title,
		bookmark.URL,
		bookmark.Description,
		bookmark.FaviconURL,
		bookmark.OGImageURL,
		bookmark.DomainName,
		bookmark.ReadProgress,
		bookmark.UpdatedAt,
		bookmark.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating bookmark %s: %w", bookmark.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("bookmark", bookmark.ID)
	}

	return nil
}

// Delete removes a bookmark by id.
func (r *BookmarkRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting bookmark %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("bookmark", id)
	}

	return nil
}
