// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"reportdesk/internal/apperr"
	"reportdesk/internal/middleware"
	"reportdesk/internal/models"
	"reportdesk/internal/service"
)

// Categories groups the category tree HTTP handlers.
type Categories struct {
	svc *service.CategoryService
}

// NewCategories creates a new Categories handler group.
func NewCategories(svc *service.CategoryService) *Categories {
	return &Categories{svc: svc}
}

// List returns the owner's categories as parent-annotated rows with
// computed report counts. With ?tree=1 the rows come back nested.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	asTree := r.URL.Query().Get("tree") == "1"

	items, err := h.svc.List(ownerID, asTree)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": items})
}

type createCategoryRequest struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
}

// Create adds a user category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), ownerID, service.CreateCategoryInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// updateCategoryRequest distinguishes absent fields from explicit nulls.
// parent_id stays raw: missing means "don't move", null means "move to root".
type updateCategoryRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Color       *string         `json:"color"`
	Icon        *string         `json:"icon"`
	ParentID    json.RawMessage `json:"parent_id"`
}

// Update applies a partial category update, including moves.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	patch := service.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	}
	if len(req.ParentID) > 0 {
		patch.SetParent = true
		if string(req.ParentID) != "null" {
			var parentID string
			if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
				writeError(w, apperr.Validation("parent_id must be a string or null"))
				return
			}
			patch.ParentID = &parentID
		}
	}

	updated, err := h.svc.Update(r.Context(), ownerID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a category, promoting its children and re-homing its
// reports on the uncategorized fallback.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
