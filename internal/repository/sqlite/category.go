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

// compile-time check that *CategoryRepo implements repository.CategoryRepository
var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo is the SQLite-backed category repository. It owns both the
// categories table and the short-id mapping table, because the allocator
// writes them in one transaction.
type CategoryRepo struct {
	db *DB
}

// Categories returns the category repository view of this database.
func (db *DB) Categories() *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a category together with its short-id mapping.
//
// The short id is allocated as MAX(short_id)+1 over everything ever assigned
// to this (user, type) pair — including mappings whose category is long
// gone, which is what makes the sequence gap-free on creation and values
// never reused after deletion. All three steps (read max, insert category,
// insert mapping) run in one transaction: both rows commit or neither does.
//
// Two concurrent creations by the same user can both read the same max.
// The UNIQUE(user_id, type, short_id) constraint then fails the second
// COMMIT; we surface that as apperror.ErrConflict and the service retries
// the whole create, recomputing the max.
func (r *CategoryRepo) Create(ctx context.Context, category *model.Category) (int64, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning create transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	var maxShortID int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(short_id), 0) FROM uuid_mappings
		 WHERE user_id = ? AND type = ?`,
		category.UserID, model.EntityCategory,
	).Scan(&maxShortID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading max short id for user %s: %w", category.UserID, err)
	}
	shortID := maxShortID + 1

	now := time.Now()
	category.ID = uuid.NewString()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, parent_id, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.UserID,
		category.Name,
		category.ParentID,
		category.IsPublic,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: inserting category: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO uuid_mappings (id, user_id, type, short_id, uuid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		category.UserID,
		model.EntityCategory,
		shortID,
		category.ID,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.Conflict("short id", fmt.Sprintf("value %d already assigned", shortID))
		}
		return 0, fmt.Errorf("sqlite: inserting short-id mapping: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.Conflict("short id", fmt.Sprintf("value %d already assigned", shortID))
		}
		return 0, fmt.Errorf("sqlite: committing category create: %w", err)
	}

	return shortID, nil
}

// ListRows runs the recursive ancestor-aware query: every category of one
// user, annotated with its resolved short id and a depth counter.
//
// The CTE seeds from roots AND from orphans (rows whose parent_id points
// outside the user's set) so that no row is silently dropped before the
// materializer can promote it. Level exists only for the ORDER BY — parents
// arrive before their children, ties broken by creation order, which fixes
// the insertion order the tree builder preserves.
func (r *CategoryRepo) ListRows(ctx context.Context, userID string) ([]model.CategoryRow, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`WITH RECURSIVE category_tree AS (
			SELECT c.id, c.user_id, c.name, c.parent_id, c.is_public,
			       c.created_at, c.updated_at, 0 AS level
			FROM categories c
			WHERE c.user_id = ?
			  AND (c.parent_id IS NULL
			       OR c.parent_id NOT IN (SELECT id FROM categories WHERE user_id = ?))
			UNION ALL
			SELECT c.id, c.user_id, c.name, c.parent_id, c.is_public,
			       c.created_at, c.updated_at, ct.level + 1
			FROM categories c
			JOIN category_tree ct ON c.parent_id = ct.id
		)
		SELECT ct.id, ct.user_id, ct.name, ct.parent_id, ct.is_public,
		       ct.created_at, ct.updated_at, ct.level,
		       COALESCE(m.short_id, 0) AS short_id
		FROM category_tree ct
		LEFT JOIN uuid_mappings m
		       ON m.uuid = ct.id AND m.user_id = ct.user_id AND m.type = ?
		ORDER BY ct.level, ct.created_at`,
		userID, userID, model.EntityCategory,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing category rows for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []model.CategoryRow
	for rows.Next() {
		var r model.CategoryRow
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Name, &r.ParentID, &r.IsPublic,
			&r.CreatedAt, &r.UpdatedAt, &r.Level, &r.ShortID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating category rows: %w", err)
	}

	return out, nil
}

// GetByID retrieves a single category by its id.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, parent_id, is_public, created_at, updated_at
		 FROM categories WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.ParentID, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %s: %w", id, err)
	}
	return &c, nil
}

// GetByShortID resolves a (user, short id) pair through the mapping table.
// A mapping whose category has since been deleted resolves to NotFound, the
// same answer as a short id that was never assigned.
func (r *CategoryRepo) GetByShortID(ctx context.Context, userID string, shortID int64) (*model.Category, error) {
	var categoryID string
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT uuid FROM uuid_mappings
		 WHERE user_id = ? AND type = ? AND short_id = ?`,
		userID, model.EntityCategory, shortID,
	).Scan(&categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", fmt.Sprintf("short:%d", shortID))
		}
		return nil, fmt.Errorf("sqlite: resolving short id %d for user %s: %w", shortID, userID, err)
	}

	return r.GetByID(ctx, categoryID)
}

// ListPublic returns a user's public categories, newest first.
func (r *CategoryRepo) ListPublic(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, parent_id, is_public, created_at, updated_at
		 FROM categories
		 WHERE user_id = ? AND is_public = 1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing public categories for user %s: %w", userID, err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.ParentID, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning public category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating public categories: %w", err)
	}

	return out, nil
}

// Update writes name, parent and visibility. id, user_id and created_at are
// immutable; updated_at is always bumped.
func (r *CategoryRepo) Update(ctx context.Context, category *model.Category) error {
	category.UpdatedAt = time.Now()

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE categories
		 SET name = ?, parent_id = ?, is_public = ?, updated_at = ?
		 WHERE id = ?`,
		category.Name,
		category.ParentID,
		category.IsPublic,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating category %s: %w", category.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("category", category.ID)
	}

	return nil
}

// Delete removes a category. The parent_id foreign key cascades, taking the
// whole subtree with it; bookmarks of deleted categories go to NULL
// (uncategorized); short-id mappings stay behind on purpose.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting category %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("category", id)
	}

	return nil
}
