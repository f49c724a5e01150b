// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate, enforce
// ownership and orchestrate; repositories read and write the database.
// Services receive repository interfaces, never concrete types, so tests can
// inject in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
	"github.com/hackerc/linkhub/internal/repository"
	"github.com/hackerc/linkhub/internal/tree"
)

const (
	MaxCategoryNameLength = 100

	// createAttempts bounds the retry loop around short-id allocation.
	// Each retry recomputes MAX(short_id) from scratch; the previously
	// computed candidate is never reused.
	createAttempts = 3
)

// CategoryService handles business logic for the category tree.
//
// It owns the server-side tree cache: a per-user snapshot of the
// materialized tree, mutated through the pure tree engine only after the
// corresponding storage call succeeds, and invalidated whenever a storage
// call leaves the snapshot's freshness in doubt.
type CategoryService struct {
	repo   repository.CategoryRepository
	cache  *tree.Cache
	logger *slog.Logger
}

// NewCategoryService creates a CategoryService with an empty cache.
func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		cache:  tree.NewCache(),
		logger: logger,
	}
}

// Tree returns the user's materialized category tree, serving the cached
// snapshot when one exists and otherwise querying the flat rows and building
// it fresh.
func (s *CategoryService) Tree(ctx context.Context, userID string) ([]*model.TreeCategory, error) {
	if nodes, ok := s.cache.Get(userID); ok {
		return nodes, nil
	}

	rows, err := s.repo.ListRows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading category rows: %w", err)
	}

	nodes := tree.Build(rows)
	s.cache.Put(userID, nodes)
	return nodes, nil
}

// Get returns one node from the cached tree without touching storage,
// falling back to a point lookup when the cache is cold. Used by callers
// that inspect current state before deciding which operation to dispatch.
func (s *CategoryService) Get(ctx context.Context, userID, id string) (*model.TreeCategory, error) {
	if nodes, ok := s.cache.Get(userID); ok {
		if node := tree.Find(nodes, id); node != nil {
			return node, nil
		}
		return nil, apperror.NotFound("category", id)
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, apperror.NotFound("category", id)
	}
	return &model.TreeCategory{Category: *category, SubCategories: []*model.TreeCategory{}}, nil
}

// Create validates and persists a new category, allocating its short id.
//
// The repository runs allocation and both inserts in one transaction. When
// two concurrent creations by the same user race for the same short id, the
// loser surfaces as ErrConflict and we retry the whole create — recomputed
// max, fresh transaction — up to createAttempts times.
//
// The cached tree is only mutated after the transaction has committed, so a
// failed create leaves the snapshot untouched.
func (s *CategoryService) Create(ctx context.Context, userID, name string, parentID *string, isPublic bool) (*model.TreeCategory, error) {
	name = strings.TrimSpace(name)
	if userID == "" {
		return nil, apperror.Unauthorized("valid session required")
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
	}

	if parentID != nil {
		parent, err := s.repo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		// Cross-user parent references are forbidden; answer as if the
		// parent does not exist so nothing about other users' trees leaks.
		if parent.UserID != userID {
			return nil, apperror.NotFound("category", *parentID)
		}
	}

	category := &model.Category{
		UserID:   userID,
		Name:     name,
		ParentID: parentID,
		IsPublic: isPublic,
	}

	var shortID int64
	var err error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		shortID, err = s.repo.Create(ctx, category)
		if err == nil {
			break
		}
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create category",
				slog.String("userID", userID),
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("creating category: %w", err)
		}
		s.logger.Warn("short id conflict, retrying create",
			slog.String("userID", userID),
			slog.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("creating category after %d attempts: %w", createAttempts, err)
	}

	node := &model.TreeCategory{
		Category:      *category,
		ShortID:       shortID,
		SubCategories: []*model.TreeCategory{},
	}
	s.cache.Mutate(userID, node, tree.OpAdd)

	s.logger.Info("category created",
		slog.String("id", category.ID),
		slog.String("userID", userID),
		slog.Int64("shortID", shortID),
	)

	return node, nil
}

// UpdateCategoryParams carries the mutable category fields. Nil pointers
// mean "leave unchanged"; ClearParent moves the category to the root level.
type UpdateCategoryParams struct {
	Name        *string
	IsPublic    *bool
	ParentID    *string
	ClearParent bool
}

// Update renames, re-parents or toggles visibility of a category.
//
// Reparenting enforces the forest invariant: the new parent must belong to
// the same user and must not sit inside the subtree being moved (a category
// cannot become its own ancestor). A move invalidates the cached tree, since
// a field merge cannot relocate a node.
func (s *CategoryService) Update(ctx context.Context, userID, id string, params UpdateCategoryParams) (*model.Category, error) {
	category, err := s.ownedCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "category name is required")
		}
		if len(name) > MaxCategoryNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
		}
		category.Name = name
	}
	if params.IsPublic != nil {
		category.IsPublic = *params.IsPublic
	}

	reparented := false
	switch {
	case params.ClearParent:
		reparented = category.ParentID != nil
		category.ParentID = nil
	case params.ParentID != nil:
		if err := s.checkReparent(ctx, userID, id, *params.ParentID); err != nil {
			return nil, err
		}
		reparented = category.ParentID == nil || *category.ParentID != *params.ParentID
		category.ParentID = params.ParentID
	}

	if err := s.repo.Update(ctx, category); err != nil {
		// The write may or may not have landed; drop the snapshot and let
		// the next read refetch.
		s.cache.Invalidate(userID)
		s.logger.Error("failed to update category",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating category: %w", err)
	}

	node := &model.TreeCategory{Category: *category}
	if reparented {
		// A merge cannot move a node between branches. Rebuilding from
		// storage is the simplest way to keep the snapshot honest about the
		// moved subtree's children.
		s.cache.Invalidate(userID)
	} else {
		s.cache.Mutate(userID, node, tree.OpUpdate)
	}

	s.logger.Info("category updated", slog.String("id", id))
	return category, nil
}

// Delete removes a category and, by storage-level cascade, its whole
// subtree. Bookmarks of deleted categories become uncategorized. The short
// id stays burned: mappings are never removed, so the allocator can never
// hand the value out again.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	category, err := s.ownedCategory(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, category.ID); err != nil {
		s.cache.Invalidate(userID)
		s.logger.Error("failed to delete category",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting category: %w", err)
	}

	s.cache.Mutate(userID, &model.TreeCategory{Category: model.Category{ID: id}}, tree.OpDelete)

	s.logger.Info("category deleted", slog.String("id", id))
	return nil
}

// ToggleActive flips a node's expand/collapse flag in the cached tree and
// returns the new snapshot. Purely transient UI state — nothing is
// persisted, and a stale id is a silent no-op.
func (s *CategoryService) ToggleActive(ctx context.Context, userID, id string) ([]*model.TreeCategory, error) {
	if _, ok := s.cache.Get(userID); !ok {
		if _, err := s.Tree(ctx, userID); err != nil {
			return nil, err
		}
	}
	s.cache.Mutate(userID, &model.TreeCategory{Category: model.Category{ID: id}}, tree.OpToggleActive)
	nodes, _ := s.cache.Get(userID)
	return nodes, nil
}

// Invalidate drops the user's cached tree; the next Tree call refetches.
func (s *CategoryService) Invalidate(userID string) {
	s.cache.Invalidate(userID)
}

// ownedCategory fetches a category and hides it behind NotFound when the
// caller does not own it.
func (s *CategoryService) ownedCategory(ctx context.Context, userID, id string) (*model.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "category ID is required")
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, apperror.NotFound("category", id)
	}
	return category, nil
}

// checkReparent validates a new parent: it must exist, belong to the same
// user, differ from the node itself, and not be a descendant of the node —
// otherwise the move would create a cycle.
func (s *CategoryService) checkReparent(ctx context.Context, userID, id, newParentID string) error {
	if newParentID == id {
		return apperror.ValidationFailed("parentId", "category cannot be its own parent")
	}

	parent, err := s.repo.GetByID(ctx, newParentID)
	if err != nil {
		return err
	}
	if parent.UserID != userID {
		return apperror.NotFound("category", newParentID)
	}

	// Walk up from the proposed parent; hitting the moved node means the
	// parent lives inside its subtree.
	rows, err := s.repo.ListRows(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading category rows for cycle check: %w", err)
	}
	parents := make(map[string]*string, len(rows))
	for _, row := range rows {
		parents[row.ID] = row.ParentID
	}
	for cur := &newParentID; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return apperror.ValidationFailed("parentId", "category cannot be moved into its own subtree")
		}
	}

	return nil
}
