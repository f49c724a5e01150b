package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hackerc/linkhub/internal/model"
)

// newTestDB opens a fresh file-backed database in a temp dir. A file, not
// :memory:, because the sql.DB pool may open multiple connections and every
// in-memory connection is its own empty database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUser inserts a user and returns it. Categories and bookmarks carry
// a user_id foreign key, so nearly every test needs one.
func newTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}

// newTestCategory inserts a category and returns it with its short id.
func newTestCategory(t *testing.T, db *DB, userID, name string, parentID *string) (*model.Category, int64) {
	t.Helper()
	c := &model.Category{
		UserID:   userID,
		Name:     name,
		ParentID: parentID,
	}
	shortID, err := db.Categories().Create(context.Background(), c)
	if err != nil {
		t.Fatalf("creating test category %s: %v", name, err)
	}
	return c, shortID
}
