package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
)

func newTestBookmark(t *testing.T, db *DB, userID string, categoryID *string, title string) *model.Bookmark {
	t.Helper()
	b := &model.Bookmark{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		URL:        "https://example.com/" + title,
		DomainName: "example.com",
	}
	if err := db.Bookmarks().Create(context.Background(), b); err != nil {
		t.Fatalf("creating test bookmark %s: %v", title, err)
	}
	return b
}

func TestBookmark_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")

	created := newTestBookmark(t, db, user.ID, nil, "go-blog")

	got, err := db.Bookmarks().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "go-blog" || got.UserID != user.ID {
		t.Errorf("got %+v", got)
	}
	if got.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil (uncategorized)", *got.CategoryID)
	}
}

func TestBookmark_ListByUser_CategoryFilter(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	ctx := context.Background()

	cat, _ := newTestCategory(t, db, user.ID, "reading", nil)
	newTestBookmark(t, db, user.ID, &cat.ID, "in-category")
	newTestBookmark(t, db, user.ID, nil, "uncategorized")

	all, err := db.Bookmarks().ListByUser(ctx, user.ID, nil)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered list has %d bookmarks, want 2", len(all))
	}

	filtered, err := db.Bookmarks().ListByUser(ctx, user.ID, &cat.ID)
	if err != nil {
		t.Fatalf("ListByUser filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "in-category" {
		t.Errorf("filtered list = %+v", filtered)
	}
}

func TestBookmark_CategoryDeleteSetsNull(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	ctx := context.Background()

	cat, _ := newTestCategory(t, db, user.ID, "doomed", nil)
	b := newTestBookmark(t, db, user.ID, &cat.ID, "survivor")

	if err := db.Categories().Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}

	// The bookmark survives, stranded in the "All Links" bucket.
	got, err := db.Bookmarks().GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID after category delete: %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("CategoryID = %v, want NULL after category delete", *got.CategoryID)
	}
}

func TestBookmark_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	ctx := context.Background()

	b := newTestBookmark(t, db, user.ID, nil, "draft")
	b.Title = "final"
	b.ReadProgress = 40

	if err := db.Bookmarks().Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := db.Bookmarks().GetByID(ctx, b.ID)
	if got.Title != "final" || got.ReadProgress != 40 {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := db.Bookmarks().Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Bookmarks().GetByID(ctx, b.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
}
