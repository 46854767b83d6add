// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportStatus is the publication state of a report.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusPublished ReportStatus = "published"
	ReportStatusArchived  ReportStatus = "archived"
)

// Valid reports whether the status is one of the known values.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusPublished, ReportStatusArchived:
		return true
	}
	return false
}

// ReportPriority is the urgency level assigned to a report.
type ReportPriority string

const (
	PriorityLow    ReportPriority = "low"
	PriorityMedium ReportPriority = "medium"
	PriorityHigh   ReportPriority = "high"
	PriorityUrgent ReportPriority = "urgent"
)

// Valid reports whether the priority is one of the known values.
func (p ReportPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MaxReportTitleLen is the maximum rune length of a report title.
const MaxReportTitleLen = 200

// Report is a user document. CategoryID is nullable; a nil value is
// normalized to the "uncategorized" predefined category on read paths.
// File storage itself is external — only the metadata lives here.
type Report struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Summary    string         `json:"summary"`
	Status     ReportStatus   `json:"status"`
	Priority   ReportPriority `json:"priority"`
	CategoryID *string        `json:"category_id"`
	OwnerID    uuid.UUID      `json:"owner_id"`
	WordCount  int            `json:"word_count"`
	FilePath   *string        `json:"file_path"`
	FileSize   *int64         `json:"file_size"`
	FileMime   *string        `json:"file_mime"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CountWords returns the whitespace-separated word count of s. Stored on the
// report at write time so it can serve as a plain sortable column.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
