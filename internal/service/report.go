// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"reportdesk/internal/apperr"
	"reportdesk/internal/models"
	"reportdesk/internal/registry"
	"reportdesk/internal/store"
)

// ReportService validates report mutations and the report–category linkage.
type ReportService struct {
	reports    *store.ReportStore
	categories *store.CategoryStore
}

// NewReportService returns a ReportService.
func NewReportService(reports *store.ReportStore, categories *store.CategoryStore) *ReportService {
	return &ReportService{reports: reports, categories: categories}
}

// CreateReportInput carries the fields for a new report.
type CreateReportInput struct {
	Title      string
	Content    string
	Summary    string
	Status     string
	Priority   string
	CategoryID *string
	FilePath   *string
	FileSize   *int64
	FileMime   *string
}

// Create validates and inserts a report. An omitted status defaults to
// draft, an omitted priority to medium. The category, when given, must
// exist and belong to the same owner.
func (s *ReportService) Create(ownerID uuid.UUID, in CreateReportInput) (*models.Report, error) {
	title, err := validReportTitle(in.Title)
	if err != nil {
		return nil, err
	}

	status := models.ReportStatus(in.Status)
	if in.Status == "" {
		status = models.ReportStatusDraft
	}
	if !status.Valid() {
		return nil, apperr.Validation("status must be one of draft, published, archived")
	}

	priority := models.ReportPriority(in.Priority)
	if in.Priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperr.Validation("priority must be one of low, medium, high, urgent")
	}

	if err := s.checkCategory(ownerID, in.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.reports.Create(&models.Report{
		Title:      title,
		Content:    in.Content,
		Summary:    in.Summary,
		Status:     status,
		Priority:   priority,
		CategoryID: in.CategoryID,
		OwnerID:    ownerID,
		FilePath:   in.FilePath,
		FileSize:   in.FileSize,
		FileMime:   in.FileMime,
	})
	if err != nil {
		return nil, err
	}
	return normalizeReport(created), nil
}

// Get returns one report, with a nil category normalized to the fallback id.
func (s *ReportService) Get(ownerID, id uuid.UUID) (*models.Report, error) {
	rep, err := s.reports.FindByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, apperr.NotFound("report not found")
	}
	return normalizeReport(rep), nil
}

// ReportPatch is a partial report update. Nil fields are left untouched.
// SetCategory distinguishes "don't change" from "clear" (CategoryID nil).
type ReportPatch struct {
	Title       *string
	Content     *string
	Summary     *string
	Status      *string
	Priority    *string
	CategoryID  *string
	SetCategory bool
	FilePath    *string
	FileSize    *int64
	FileMime    *string
}

// Update applies a patch. The store writes it as a locked single-row
// transaction, so two concurrent patches both land instead of the later
// one reverting the earlier one's columns. Report counts are computed at
// read time, so changing the category needs no recount step.
func (s *ReportService) Update(ownerID, id uuid.UUID, patch ReportPatch) (*models.Report, error) {
	upd := store.ReportUpdate{
		Content:     patch.Content,
		Summary:     patch.Summary,
		CategoryID:  patch.CategoryID,
		SetCategory: patch.SetCategory,
		FilePath:    patch.FilePath,
		FileSize:    patch.FileSize,
		FileMime:    patch.FileMime,
	}
	if patch.Title != nil {
		title, err := validReportTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
	}
	if patch.Status != nil {
		status := models.ReportStatus(*patch.Status)
		if !status.Valid() {
			return nil, apperr.Validation("status must be one of draft, published, archived")
		}
		upd.Status = &status
	}
	if patch.Priority != nil {
		priority := models.ReportPriority(*patch.Priority)
		if !priority.Valid() {
			return nil, apperr.Validation("priority must be one of low, medium, high, urgent")
		}
		upd.Priority = &priority
	}
	if patch.SetCategory {
		if err := s.checkCategory(ownerID, patch.CategoryID); err != nil {
			return nil, err
		}
	}

	updated, err := s.reports.Update(id, ownerID, upd)
	if err != nil {
		return nil, err
	}
	return normalizeReport(updated), nil
}

// Delete removes a report and, through the cascading join table, its tag
// associations.
func (s *ReportService) Delete(ownerID, id uuid.UUID) error {
	deleted, err := s.reports.Delete(id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("report not found")
	}
	return nil
}

// Search runs the read-only search projection. Status, priority, and sort
// inputs are validated here; pagination bounds are clamped by the store.
func (s *ReportService) Search(ownerID uuid.UUID, f store.SearchFilter) ([]models.Report, int, error) {
	if f.Status != "" && !models.ReportStatus(f.Status).Valid() {
		return nil, 0, apperr.Validation("status must be one of draft, published, archived")
	}
	if f.Priority != "" && !models.ReportPriority(f.Priority).Valid() {
		return nil, 0, apperr.Validation("priority must be one of low, medium, high, urgent")
	}

	items, total, err := s.reports.Search(ownerID, f, registry.UncategorizedID)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		normalizeReport(&items[i])
	}
	return items, total, nil
}

// checkCategory verifies a target category exists under the same owner.
// A nil category is valid — it reads back as uncategorized.
func (s *ReportService) checkCategory(ownerID uuid.UUID, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	cat, err := s.categories.FindByID(*categoryID)
	if err != nil {
		return err
	}
	if cat == nil || cat.OwnerID != ownerID {
		return apperr.NotFound("category not found")
	}
	return nil
}

// validReportTitle trims and bounds-checks a report title.
func validReportTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxReportTitleLen {
		return "", apperr.Validation("title is too long (max %d characters)", models.MaxReportTitleLen)
	}
	return title, nil
}

// normalizeReport maps a nil category to the uncategorized fallback on the
// way out. Storage keeps the NULL; only read paths see the substitution.
func normalizeReport(rep *models.Report) *models.Report {
	if rep.CategoryID == nil {
		fallback := registry.UncategorizedID
		rep.CategoryID = &fallback
	}
	return rep
}
