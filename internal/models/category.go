// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxCategoryNameLen is the maximum rune length of a category name.
const MaxCategoryNameLen = 50

// Category represents one node of the per-owner category tree. Predefined
// categories carry fixed well-known ids (e.g. "uncategorized"); user-created
// categories get generated UUID ids. Reports reference at most one category.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	ParentID    *string   `json:"parent_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Predefined  bool      `json:"predefined"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children    []Category `json:"children,omitempty"`
	Depth       int        `json:"depth"`
	ReportCount int        `json:"report_count"`
}
