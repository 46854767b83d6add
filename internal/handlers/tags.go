// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reportdesk/internal/apperr"
	"reportdesk/internal/models"
	"reportdesk/internal/store"
)

// Tags groups the tag vocabulary handlers. Tags are global: a shared
// vocabulary rather than per-owner rows.
type Tags struct {
	store *store.TagStore
}

// NewTags creates a new Tags handler group.
func NewTags(store *store.TagStore) *Tags {
	return &Tags{store: store}
}

// List returns every tag, ordered by name.
func (h *Tags) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Create adds a tag to the vocabulary. Duplicate names are rejected by the
// unique constraint, not a pre-check.
func (h *Tags) Create(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, apperr.Validation("name is required"))
		return
	}
	if utf8.RuneCountInString(name) > models.MaxTagNameLen {
		writeError(w, apperr.Validation("name is too long (max %d characters)", models.MaxTagNameLen))
		return
	}

	created, err := h.store.Create(&models.Tag{Name: name, Color: req.Color})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Delete removes a tag; the join table cascade detaches it from all reports.
func (h *Tags) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperr.NotFound("tag not found"))
		return
	}

	deleted, err := h.store.Delete(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, apperr.NotFound("tag not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
