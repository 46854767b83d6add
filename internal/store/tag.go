// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"reportdesk/internal/apperr"
	"reportdesk/internal/models"
)

// TagStore manages tags and their report associations.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, name, color, created_at`

// List returns all tags ordered by name.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT ` + tagColumns + ` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, wrap("list tags", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(id uuid.UUID) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find tag by id", err)
	}
	return &t, nil
}

// Create inserts a new tag. Name collisions surface as duplicate_name;
// the unique constraint picks the winner under concurrent creation.
func (s *TagStore) Create(t *models.Tag) (*models.Tag, error) {
	var result models.Tag
	err := s.db.QueryRow(`
		INSERT INTO tags (name, color)
		VALUES ($1, $2)
		RETURNING `+tagColumns,
		t.Name, t.Color,
	).Scan(&result.ID, &result.Name, &result.Color, &result.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, apperr.DuplicateName("a tag named %q already exists", t.Name)
		}
		return nil, wrap("create tag", err)
	}
	return &result, nil
}

// Delete removes a tag. Its join rows disappear via the cascading foreign
// key. Returns false if the tag did not exist.
func (s *TagStore) Delete(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return false, wrap("delete tag", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("delete tag", err)
	}
	return n > 0, nil
}

// Attach links a tag to a report. Attaching an already-attached pair is a
// no-op. A missing report or tag surfaces as not_found.
func (s *TagStore) Attach(reportID, tagID uuid.UUID) error {
	_, err := s.db.Exec(`
		INSERT INTO report_tags (report_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, reportID, tagID)
	if err != nil {
		if fkViolation(err) {
			return apperr.NotFound("report or tag not found")
		}
		return wrap("attach tag", err)
	}
	return nil
}

// Detach unlinks a tag from a report. Detaching a pair that isn't linked
// is a no-op.
func (s *TagStore) Detach(reportID, tagID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM report_tags WHERE report_id = $1 AND tag_id = $2
	`, reportID, tagID)
	if err != nil {
		return wrap("detach tag", err)
	}
	return nil
}

// ForReport returns the tags attached to a report, ordered by name.
func (s *TagStore) ForReport(reportID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.color, t.created_at
		FROM tags t
		JOIN report_tags rt ON rt.tag_id = t.id
		WHERE rt.report_id = $1
		ORDER BY t.name ASC
	`, reportID)
	if err != nil {
		return nil, wrap("tags for report", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
