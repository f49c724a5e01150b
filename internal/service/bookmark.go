package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
	"github.com/hackerc/linkhub/internal/repository"
)

const (
	MaxBookmarkTitleLength = 200
	MaxURLLength           = 2048
)

// BookmarkService handles business logic for saved links. Bookmarks are the
// leaf payload the category tree organizes — no tree logic lives here, only
// validation and ownership.
type BookmarkService struct {
	repo       repository.BookmarkRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// NewBookmarkService creates a BookmarkService.
func NewBookmarkService(repo repository.BookmarkRepository, categories repository.CategoryRepository, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// BookmarkParams carries the client-supplied bookmark fields.
type BookmarkParams struct {
	Title        string
	URL          string
	Description  string
	CategoryID   *string
	FaviconURL   string
	OGImageURL   string
	DomainName   string
	ReadProgress int
}

// Create validates and saves a new bookmark. A nil CategoryID files it under
// "All Links"; a set one must reference a category the caller owns.
func (s *BookmarkService) Create(ctx context.Context, userID string, params BookmarkParams) (*model.Bookmark, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("valid session required")
	}

	bookmark, err := s.validated(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	bookmark.UserID = userID

	if err := s.repo.Create(ctx, bookmark); err != nil {
		s.logger.Error("failed to create bookmark",
			slog.String("userID", userID),
			slog.String("url", bookmark.URL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating bookmark: %w", err)
	}

	s.logger.Info("bookmark created",
		slog.String("id", bookmark.ID),
		slog.String("userID", userID),
	)
	return bookmark, nil
}

// List returns the caller's bookmarks, optionally scoped to one category.
func (s *BookmarkService) List(ctx context.Context, userID string, categoryID *string) ([]model.Bookmark, error) {
	bookmarks, err := s.repo.ListByUser(ctx, userID, categoryID)
	if err != nil {
		s.logger.Error("failed to list bookmarks",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Update modifies an existing bookmark the caller owns.
func (s *BookmarkService) Update(ctx context.Context, userID, id string, params BookmarkParams) (*model.Bookmark, error) {
	existing, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.validated(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		s.logger.Error("failed to update bookmark",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating bookmark: %w", err)
	}

	s.logger.Info("bookmark updated", slog.String("id", id))
	return updated, nil
}

// Delete removes a bookmark the caller owns.
func (s *BookmarkService) Delete(ctx context.Context, userID, id string) error {
	bookmark, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, bookmark.ID); err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}

	s.logger.Info("bookmark deleted", slog.String("id", id))
	return nil
}

func (s *BookmarkService) owned(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "bookmark ID is required")
	}

	bookmark, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bookmark.UserID != userID {
		return nil, apperror.NotFound("bookmark", id)
	}
	return bookmark, nil
}

func (s *BookmarkService) validated(ctx context.Context, userID string, params BookmarkParams) (*model.Bookmark, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "bookmark title is required")
	}
	if len(title) > MaxBookmarkTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("bookmark title must be %d characters or less", MaxBookmarkTitleLength))
	}

	rawURL := strings.TrimSpace(params.URL)
	if rawURL == "" {
		return nil, apperror.ValidationFailed("url", "bookmark URL is required")
	}
	if len(rawURL) > MaxURLLength {
		return nil, apperror.ValidationFailed("url",
			fmt.Sprintf("bookmark URL must be %d characters or less", MaxURLLength))
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apperror.ValidationFailed("url", "bookmark URL must be a valid http(s) URL")
	}

	if params.ReadProgress < 0 || params.ReadProgress > 100 {
		return nil, apperror.ValidationFailed("readProgress", "reading progress must be between 0 and 100")
	}

	if params.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *params.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.UserID != userID {
			return nil, apperror.NotFound("category", *params.CategoryID)
		}
	}

	domain := strings.TrimSpace(params.DomainName)
	if domain == "" {
		domain = parsed.Hostname()
	}

	return &model.Bookmark{
		CategoryID:   params.CategoryID,
		Title:        title,
		URL:          rawURL,
		Description:  strings.TrimSpace(params.Description),
		FaviconURL:   strings.TrimSpace(params.FaviconURL),
		OGImageURL:   strings.TrimSpace(params.OGImageURL),
		DomainName:   domain,
		ReadProgress: params.ReadProgress,
	}, nil
}
