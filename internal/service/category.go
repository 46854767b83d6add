// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service enforces the domain rules on top of the stores: category
// tree invariants, the reconciliation job, and report linkage validation.
package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"reportdesk/internal/apperr"
	"reportdesk/internal/models"
	"reportdesk/internal/notify"
	"reportdesk/internal/registry"
	"reportdesk/internal/store"
)

// CategoryService owns the category tree invariants: acyclicity, sibling
// name uniqueness, parent ownership, and the protected fallback category.
type CategoryService struct {
	categories *store.CategoryStore
	notifier   notify.Notifier
}

// NewCategoryService returns a CategoryService.
func NewCategoryService(categories *store.CategoryStore, notifier notify.Notifier) *CategoryService {
	return &CategoryService{categories: categories, notifier: notifier}
}

// List returns the owner's categories as parent-annotated rows with
// computed report counts, ordered by creation time. With asTree the rows
// are nested into a tree.
func (s *CategoryService) List(ownerID uuid.UUID, asTree bool) ([]models.Category, error) {
	flat, err := s.categories.ListByOwner(ownerID, registry.UncategorizedID)
	if err != nil {
		return nil, err
	}
	if asTree {
		return store.BuildTree(flat), nil
	}
	return flat, nil
}

// CreateCategoryInput carries the fields for a new category.
type CreateCategoryInput struct {
	Name        string
	ParentID    *string
	Color       string
	Icon        string
	Description string
}

// Create validates and inserts a user category. A new node has no children,
// so it cannot introduce a cycle; sibling-name uniqueness is decided by the
// database constraint, not a racy pre-check.
func (s *CategoryService) Create(ctx context.Context, ownerID uuid.UUID, in CreateCategoryInput) (*models.Category, error) {
	name, err := validCategoryName(in.Name)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.categories.FindByID(*in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.OwnerID != ownerID {
			return nil, apperr.NotFound("parent category not found")
		}
	}

	created, err := s.categories.Create(&models.Category{
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		ParentID:    in.ParentID,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.CategoryChanged(ctx, notify.Event{
		Action: notify.ActionCreated, CategoryID: created.ID, OwnerID: ownerID,
	})
	return created, nil
}

// CategoryPatch is a partial update. Nil fields are left untouched.
// SetParent distinguishes "don't move" from "move to root" (ParentID nil).
type CategoryPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	ParentID    *string
	SetParent   bool
}

// Update applies a patch to a category. The store runs the whole patch in
// one transaction with the touched rows locked, so concurrent patches
// serialize and a move that would close a cycle is rejected there.
func (s *CategoryService) Update(ctx context.Context, ownerID uuid.UUID, id string, patch CategoryPatch) (*models.Category, error) {
	if id == registry.UncategorizedID && (patch.Name != nil || patch.SetParent) {
		return nil, apperr.Protected("the uncategorized category cannot be renamed or moved")
	}

	upd := store.CategoryUpdate{
		Description: patch.Description,
		Color:       patch.Color,
		Icon:        patch.Icon,
		ParentID:    patch.ParentID,
		SetParent:   patch.SetParent,
	}
	if patch.Name != nil {
		name, err := validCategoryName(*patch.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}

	updated, err := s.categories.Update(id, ownerID, upd)
	if err != nil {
		return nil, err
	}

	s.notifier.CategoryChanged(ctx, notify.Event{
		Action: notify.ActionUpdated, CategoryID: id, OwnerID: ownerID,
	})
	return updated, nil
}

// Delete removes a category. Children are promoted to the deleted node's
// former parent and linked reports are reassigned to the uncategorized
// fallback, all in one transaction. The fallback itself is protected.
func (s *CategoryService) Delete(ctx context.Context, ownerID uuid.UUID, id string) error {
	if id == registry.UncategorizedID {
		return apperr.Protected("the uncategorized category cannot be deleted")
	}

	cat, err := s.categories.FindByID(id)
	if err != nil {
		return err
	}
	if cat == nil || cat.OwnerID != ownerID {
		return apperr.NotFound("category not found")
	}

	// The reassign target must exist before the cascade runs. Covers owners
	// whose reconciliation never completed.
	if err := s.ensureFallback(ownerID); err != nil {
		return err
	}

	if err := s.categories.DeleteCascade(id, cat.ParentID, registry.UncategorizedID); err != nil {
		return err
	}

	slog.Info("category deleted",
		"category_id", id,
		"owner_id", ownerID,
	)
	s.notifier.CategoryChanged(ctx, notify.Event{
		Action: notify.ActionDeleted, CategoryID: id, OwnerID: ownerID,
	})
	return nil
}

// ensureFallback materializes the uncategorized category if it is missing.
func (s *CategoryService) ensureFallback(ownerID uuid.UUID) error {
	fb, err := s.categories.FindByID(registry.UncategorizedID)
	if err != nil {
		return err
	}
	if fb != nil {
		return nil
	}
	entry, _ := registry.Lookup(registry.UncategorizedID)
	_, err = s.categories.CreateIfAbsent(&models.Category{
		ID:         entry.ID,
		Name:       entry.Name,
		Icon:       entry.Icon,
		Color:      entry.Color,
		OwnerID:    ownerID,
		Predefined: true,
	})
	return err
}

// validCategoryName trims and bounds-checks a category name.
func validCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxCategoryNameLen {
		return "", apperr.Validation("name is too long (max %d characters)", models.MaxCategoryNameLen)
	}
	return name, nil
}
