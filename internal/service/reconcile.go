// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"log/slog"

	"github.com/google/uuid"

	"reportdesk/internal/models"
	"reportdesk/internal/registry"
	"reportdesk/internal/store"
)

// Reconciler materializes the predefined category registry for an owner.
// The job is idempotent and safe under concurrent invocation: inserts are
// keyed on the well-known id, so N concurrent runs leave exactly one row
// per registry entry and existing rows — user-edited or not — are never
// touched.
type Reconciler struct {
	categories *store.CategoryStore
}

// NewReconciler returns a Reconciler.
func NewReconciler(categories *store.CategoryStore) *Reconciler {
	return &Reconciler{categories: categories}
}

// ReconcileResult summarizes one reconciliation run. OK means every
// registry entry is present at the end.
type ReconcileResult struct {
	Created  []string          `json:"created"`
	Existing []string          `json:"existing"`
	Failed   map[string]string `json:"failed,omitempty"`
	OK       bool              `json:"ok"`
}

// Reconcile ensures every registry entry exists for ownerID. A failure on
// one entry never blocks the others; each outcome is reported per entry.
func (r *Reconciler) Reconcile(ownerID uuid.UUID) ReconcileResult {
	result := ReconcileResult{Failed: map[string]string{}}

	for _, entry := range registry.Entries() {
		created, err := r.categories.CreateIfAbsent(&models.Category{
			ID:         entry.ID,
			Name:       entry.Name,
			Icon:       entry.Icon,
			Color:      entry.Color,
			OwnerID:    ownerID,
			Predefined: true,
		})
		if err != nil {
			result.Failed[entry.ID] = err.Error()
			slog.Warn("reconcile entry failed",
				"category_id", entry.ID,
				"owner_id", ownerID,
				"error", err,
			)
			continue
		}
		if created {
			result.Created = append(result.Created, entry.ID)
		} else {
			result.Existing = append(result.Existing, entry.ID)
		}
	}

	result.OK = len(result.Failed) == 0
	if len(result.Failed) == 0 {
		result.Failed = nil
	}

	slog.Info("predefined categories reconciled",
		"owner_id", ownerID,
		"created", len(result.Created),
		"existing", len(result.Existing),
		"failed", len(result.Failed),
	)
	return result
}
