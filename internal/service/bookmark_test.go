package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
)

// memBookmarkRepo is a writable in-memory BookmarkRepository for the
// bookmark service tests (the share tests use a fixed read-only one).
type memBookmarkRepo struct {
	bookmarks map[string]*model.Bookmark
	nextID    int
}

func newMemBookmarkRepo() *memBookmarkRepo {
	return &memBookmarkRepo{bookmarks: make(map[string]*model.Bookmark)}
}

func (m *memBookmarkRepo) Create(ctx context.Context, b *model.Bookmark) error {
	m.nextID++
	b.ID = string(rune('A' + m.nextID - 1))
	stored := *b
	m.bookmarks[b.ID] = &stored
	return nil
}

func (m *memBookmarkRepo) GetByID(ctx context.Context, id string) (*model.Bookmark, error) {
	b, ok := m.bookmarks[id]
	if !ok {
		return nil, apperror.NotFound("bookmark", id)
	}
	copied := *b
	return &copied, nil
}

func (m *memBookmarkRepo) ListByUser(ctx context.Context, userID string, categoryID *string) ([]model.Bookmark, error) {
	out := []model.Bookmark{}
	for _, b := range m.bookmarks {
		if b.UserID != userID {
			continue
		}
		if categoryID != nil && (b.CategoryID == nil || *b.CategoryID != *categoryID) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memBookmarkRepo) ListByCategory(ctx context.Context, categoryID string) ([]model.Bookmark, error) {
	out := []model.Bookmark{}
	for _, b := range m.bookmarks {
		if b.CategoryID != nil && *b.CategoryID == categoryID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBookmarkRepo) Update(ctx context.Context, b *model.Bookmark) error {
	if _, ok := m.bookmarks[b.ID]; !ok {
		return apperror.NotFound("bookmark", b.ID)
	}
	stored := *b
	m.bookmarks[b.ID] = &stored
	return nil
}

func (m *memBookmarkRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.bookmarks[id]; !ok {
		return apperror.NotFound("bookmark", id)
	}
	delete(m.bookmarks, id)
	return nil
}

func newBookmarkService() (*BookmarkService, *memBookmarkRepo, *mockCategoryRepo) {
	repo := newMemBookmarkRepo()
	cats := newMockCategoryRepo()
	return NewBookmarkService(repo, cats, testLogger()), repo, cats
}

func TestBookmarkService_Create(t *testing.T) {
	svc, _, _ := newBookmarkService()

	b, err := svc.Create(context.Background(), "u1", BookmarkParams{
		Title: "  Go Blog  ",
		URL:   "https://go.dev/blog",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Title != "Go Blog" {
		t.Errorf("title = %q, want trimmed", b.Title)
	}
	if b.DomainName != "go.dev" {
		t.Errorf("domain = %q, want derived from URL", b.DomainName)
	}
	if b.UserID != "u1" {
		t.Errorf("userID = %q", b.UserID)
	}
}

func TestBookmarkService_Create_Validation(t *testing.T) {
	svc, _, _ := newBookmarkService()
	ctx := context.Background()

	cases := []struct {
		name   string
		params BookmarkParams
	}{
		{"empty title", BookmarkParams{URL: "https://x.com"}},
		{"empty url", BookmarkParams{Title: "t"}},
		{"ftp scheme", BookmarkParams{Title: "t", URL: "ftp://x.com/file"}},
		{"no host", BookmarkParams{Title: "t", URL: "https://"}},
		{"progress over 100", BookmarkParams{Title: "t", URL: "https://x.com", ReadProgress: 101}},
		{"negative progress", BookmarkParams{Title: "t", URL: "https://x.com", ReadProgress: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "u1", tc.params); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBookmarkService_Create_ForeignCategoryIsNotFound(t *testing.T) {
	svc, _, cats := newBookmarkService()

	cats.categories["their-cat"] = &model.Category{ID: "their-cat", UserID: "someone-else"}

	theirCat := "their-cat"
	_, err := svc.Create(context.Background(), "u1", BookmarkParams{
		Title:      "t",
		URL:        "https://x.com",
		CategoryID: &theirCat,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBookmarkService_Update_PreservesIdentityFields(t *testing.T) {
	svc, repo, _ := newBookmarkService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", BookmarkParams{Title: "v1", URL: "https://x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "u1", created.ID, BookmarkParams{Title: "v2", URL: "https://x.com", ReadProgress: 50})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID || updated.UserID != "u1" {
		t.Error("id and owner must survive an update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt must survive an update")
	}
	if got, _ := repo.GetByID(ctx, created.ID); got.Title != "v2" || got.ReadProgress != 50 {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestBookmarkService_OwnershipEnforced(t *testing.T) {
	svc, repo, _ := newBookmarkService()
	ctx := context.Background()

	b, err := svc.Create(ctx, "owner", BookmarkParams{Title: "t", URL: "https://x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, "intruder", b.ID, BookmarkParams{Title: "x", URL: "https://x.com"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("foreign update err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "intruder", b.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("foreign delete err = %v, want ErrNotFound", err)
	}
	if _, ok := repo.bookmarks[b.ID]; !ok {
		t.Error("bookmark must not be deleted by a non-owner")
	}
}
