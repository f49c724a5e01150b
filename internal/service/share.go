package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
	"github.com/hackerc/linkhub/internal/repository"
)

// ShareService resolves public share links for anonymous visitors.
//
// Every answer it gives about a category that is private, absent, or owned
// by a different username is the same NotFound — existence of private
// collections must not be observable from the share paths.
type ShareService struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	bookmarks  repository.BookmarkRepository
	logger     *slog.Logger
}

// NewShareService creates a ShareService.
func NewShareService(
	users repository.UserRepository,
	categories repository.CategoryRepository,
	bookmarks repository.BookmarkRepository,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		users:      users,
		categories: categories,
		bookmarks:  bookmarks,
		logger:     logger,
	}
}

// ResolveByID resolves /share/{username}/{categoryId}: the category must
// exist, belong to that username, and be public.
func (s *ShareService) ResolveByID(ctx context.Context, username, categoryID string) (*model.Category, error) {
	owner, err := s.resolveOwner(ctx, username)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.publicOnly(category, owner.ID, categoryID)
}

// ResolveByShortID resolves /share/{username}/{shortId}: the short id is
// looked up in the owner's mapping table to recover the category id, then
// the same public check applies.
func (s *ShareService) ResolveByShortID(ctx context.Context, username string, shortID int64) (*model.Category, error) {
	owner, err := s.resolveOwner(ctx, username)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByShortID(ctx, owner.ID, shortID)
	if err != nil {
		return nil, err
	}
	return s.publicOnly(category, owner.ID, fmt.Sprintf("short:%d", shortID))
}

// ListPublic returns every public category of a user. A user with none gets
// an empty list, not an error; an unknown username is NotFound.
func (s *ShareService) ListPublic(ctx context.Context, username string) ([]model.Category, error) {
	owner, err := s.resolveOwner(ctx, username)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.ListPublic(ctx, owner.ID)
	if err != nil {
		s.logger.Error("failed to list public categories",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing public categories: %w", err)
	}
	return categories, nil
}

// Bookmarks returns the bookmarks of a shared category. The resolve step
// runs first — bookmark data for a private category never leaves this
// method, that would be a correctness violation, not a UX bug.
func (s *ShareService) Bookmarks(ctx context.Context, username, ref string) ([]model.Bookmark, error) {
	category, err := s.Resolve(ctx, username, ref)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.bookmarks.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("listing shared bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Resolve accepts either form of share reference: an all-digit ref is a
// short id, anything else is treated as a category id.
func (s *ShareService) Resolve(ctx context.Context, username, ref string) (*model.Category, error) {
	if shortID, ok := parseShortID(ref); ok {
		return s.ResolveByShortID(ctx, username, shortID)
	}
	return s.ResolveByID(ctx, username, ref)
}

func (s *ShareService) resolveOwner(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.NotFound("user", username)
	}
	return s.users.GetByUsername(ctx, username)
}

// publicOnly collapses "wrong owner" and "private" into the same NotFound a
// nonexistent id produces.
func (s *ShareService) publicOnly(category *model.Category, ownerID, ref string) (*model.Category, error) {
	if category.UserID != ownerID || !category.IsPublic {
		return nil, apperror.NotFound("category", ref)
	}
	return category, nil
}

// parseShortID reports whether ref is a usable short id. Anything ParseInt
// rejects, including values past the int64 range, falls through to the
// category-id path.
func parseShortID(ref string) (int64, bool) {
	n, err := strconv.ParseInt(ref, 10, 64)
	return n, err == nil && n > 0
}
