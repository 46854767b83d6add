// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reportdesk/internal/apperr"
	"reportdesk/internal/middleware"
	"reportdesk/internal/models"
	"reportdesk/internal/service"
	"reportdesk/internal/store"
)

// Reports groups the report CRUD, search, and tag-linkage handlers.
type Reports struct {
	svc  *service.ReportService
	tags *store.TagStore
}

// NewReports creates a new Reports handler group.
func NewReports(svc *service.ReportService, tags *store.TagStore) *Reports {
	return &Reports{svc: svc, tags: tags}
}

// sortFields whitelists the sort query parameter.
var sortFields = map[string]bool{
	"title": true, "created_at": true, "updated_at": true,
	"word_count": true, "file_size": true,
}

// Search filters, sorts, and paginates the owner's reports.
func (h *Reports) Search(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())

	f, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items, total, err := h.svc.Search(ownerID, f)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Report{}
	}

	limit := f.Limit
	if limit < 1 {
		limit = store.DefaultSearchLimit
	}
	if limit > store.MaxSearchLimit {
		limit = store.MaxSearchLimit
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": items,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// parseSearchFilter reads the search query parameters.
func parseSearchFilter(r *http.Request) (store.SearchFilter, error) {
	q := r.URL.Query()
	var f store.SearchFilter

	if v := q.Get("category_id"); v != "" {
		f.CategoryID = &v
	}
	if v := q.Get("tag_ids"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return f, apperr.Validation("tag_ids must be a comma-separated list of UUIDs")
			}
			f.TagIDs = append(f.TagIDs, id)
		}
	}
	f.Status = q.Get("status")
	f.Priority = q.Get("priority")
	f.Query = q.Get("q")

	if v := q.Get("date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, apperr.Validation("date_from must be RFC 3339 or YYYY-MM-DD")
		}
		f.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, apperr.Validation("date_to must be RFC 3339 or YYYY-MM-DD")
		}
		f.DateTo = &t
	}

	if v := q.Get("sort"); v != "" {
		if !sortFields[v] {
			return f, apperr.Validation("sort must be one of title, created_at, updated_at, word_count, file_size")
		}
		f.SortField = v
	}
	if v := q.Get("order"); v != "" {
		if v != "asc" && v != "desc" {
			return f, apperr.Validation("order must be asc or desc")
		}
		f.SortDir = v
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, apperr.Validation("page must be a positive integer")
		}
		f.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > store.MaxSearchLimit {
			return f, apperr.Validation("limit must be between 1 and %d", store.MaxSearchLimit)
		}
		f.Limit = n
	}

	return f, nil
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type createReportRequest struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Summary    string  `json:"summary"`
	Status     string  `json:"status"`
	Priority   string  `json:"priority"`
	CategoryID *string `json:"category_id"`
	FilePath   *string `json:"file_path"`
	FileSize   *int64  `json:"file_size"`
	FileMime   *string `json:"file_mime"`
}

// Create adds a report.
func (h *Reports) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())

	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.svc.Create(ownerID, service.CreateReportInput{
		Title:      req.Title,
		Content:    req.Content,
		Summary:    req.Summary,
		Status:     req.Status,
		Priority:   req.Priority,
		CategoryID: req.CategoryID,
		FilePath:   req.FilePath,
		FileSize:   req.FileSize,
		FileMime:   req.FileMime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns one report with its tags.
func (h *Reports) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	id, err := reportID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rep, err := h.svc.Get(ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	tags, err := h.tags.ForReport(rep.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"report": rep, "tags": tags})
}

// updateReportRequest distinguishes absent fields from explicit nulls for
// category_id: missing means "don't change", null means "clear".
type updateReportRequest struct {
	Title      *string         `json:"title"`
	Content    *string         `json:"content"`
	Summary    *string         `json:"summary"`
	Status     *string         `json:"status"`
	Priority   *string         `json:"priority"`
	CategoryID json.RawMessage `json:"category_id"`
	FilePath   *string         `json:"file_path"`
	FileSize   *int64          `json:"file_size"`
	FileMime   *string         `json:"file_mime"`
}

// Update applies a partial report update.
func (h *Reports) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	id, err := reportID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	patch := service.ReportPatch{
		Title:    req.Title,
		Content:  req.Content,
		Summary:  req.Summary,
		Status:   req.Status,
		Priority: req.Priority,
		FilePath: req.FilePath,
		FileSize: req.FileSize,
		FileMime: req.FileMime,
	}
	if len(req.CategoryID) > 0 {
		patch.SetCategory = true
		if string(req.CategoryID) != "null" {
			var categoryID string
			if err := json.Unmarshal(req.CategoryID, &categoryID); err != nil {
				writeError(w, apperr.Validation("category_id must be a string or null"))
				return
			}
			patch.CategoryID = &categoryID
		}
	}

	updated, err := h.svc.Update(ownerID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a report and its tag associations.
func (h *Reports) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	id, err := reportID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Delete(ownerID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachTag links a tag to one of the owner's reports.
func (h *Reports) AttachTag(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	reportID, tagID, err := linkIDs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// The report must belong to the caller before its tag set changes.
	if _, err := h.svc.Get(ownerID, reportID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.tags.Attach(reportID, tagID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DetachTag unlinks a tag from one of the owner's reports.
func (h *Reports) DetachTag(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromCtx(r.Context())
	reportID, tagID, err := linkIDs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.svc.Get(ownerID, reportID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.tags.Detach(reportID, tagID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reportID parses the {id} route parameter.
func reportID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound("report not found")
	}
	return id, nil
}

// linkIDs parses the {id} and {tagID} route parameters.
func linkIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	repID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.NotFound("report not found")
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.NotFound("tag not found")
	}
	return repID, tagID, nil
}
