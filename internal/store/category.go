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

// CategoryStore manages the category tree in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, color, icon, parent_id, owner_id, predefined, created_at, updated_at`

// siblingNameConstraint is the unique index enforcing distinct names within
// one (owner, parent) sibling scope.
const siblingNameConstraint = "categories_sibling_name_idx"

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon,
		&c.ParentID, &c.OwnerID, &c.Predefined, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns all categories owned by ownerID ordered by creation
// time, each with its computed report count. Reports with a NULL category
// count toward the fallback category — the count is never stored, always
// derived from the reports table.
func (s *CategoryStore) ListByOwner(ownerID uuid.UUID, fallbackID string) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.description, c.color, c.icon, c.parent_id,
		       c.owner_id, c.predefined, c.created_at, c.updated_at,
		       COUNT(r.id) AS report_count
		FROM categories c
		LEFT JOIN reports r ON r.owner_id = c.owner_id
		     AND (r.category_id = c.id OR (r.category_id IS NULL AND c.id = $2))
		WHERE c.owner_id = $1
		GROUP BY c.id
		ORDER BY c.created_at ASC, c.id ASC
	`, ownerID, fallbackID)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.ParentID,
			&c.OwnerID, &c.Predefined, &c.CreatedAt, &c.UpdatedAt,
			&c.ReportCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// BuildTree nests a flat category list into a tree by parent id, setting
// Depth on each node. The flat list's ordering is preserved among siblings.
func BuildTree(flat []models.Category) []models.Category {
	return buildTree(flat, nil, 0)
}

func buildTree(flat []models.Category, parentID *string, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = buildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *string for equality (both nil or same value).
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find category by id", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. A missing ID gets a
// generated UUID string. Sibling-name collisions surface as duplicate_name:
// the unique index decides the winner under concurrency, not a prior
// existence check.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := s.db.QueryRow(`
		INSERT INTO categories (id, name, description, color, icon, parent_id, owner_id, predefined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		c.ID, c.Name, c.Description, c.Color, c.Icon, c.ParentID, c.OwnerID, c.Predefined,
	)
	result, err := scanCategory(row)
	if err != nil {
		if uniqueViolation(err, siblingNameConstraint) {
			return nil, apperr.DuplicateName("a category named %q already exists here", c.Name)
		}
		if fkViolation(err) {
			return nil, apperr.NotFound("parent category not found")
		}
		return nil, wrap("create category", err)
	}
	return result, nil
}

// CreateIfAbsent atomically inserts a category unless a row with the same
// id already exists. Returns true when a new row was created. Used by the
// reconciliation job; an id conflict means "already present", never an error.
func (s *CategoryStore) CreateIfAbsent(c *models.Category) (bool, error) {
	res, err := s.db.Exec(`
		INSERT INTO categories (id, name, description, color, icon, parent_id, owner_id, predefined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, c.ID, c.Name, c.Description, c.Color, c.Icon, c.ParentID, c.OwnerID, c.Predefined)
	if err != nil {
		if uniqueViolation(err, siblingNameConstraint) {
			return false, apperr.DuplicateName("a category named %q already exists here", c.Name)
		}
		return false, wrap("create category if absent", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("create category if absent", err)
	}
	return n > 0, nil
}

// CategoryUpdate is a partial column update. Nil fields are left untouched;
// SetParent distinguishes "don't move" from "move to root" (ParentID nil).
type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	ParentID    *string
	SetParent   bool
}

// Update applies a partial update in a single transaction. The target row
// is locked before anything is read, so two concurrent patches serialize
// instead of overwriting each other's columns. A re-parent locks the new
// parent and every ancestor above it inside the same transaction and fails
// with cyclic_move if the category appears in that chain; holding the locks
// until commit keeps a concurrent move from re-pointing an ancestor and
// closing a cycle behind this transaction's back.
func (s *CategoryStore) Update(id string, ownerID uuid.UUID, upd CategoryUpdate) (*models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, wrap("update category: begin tx", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		SELECT `+categoryColumns+` FROM categories
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, id, ownerID)
	cat, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category not found")
	}
	if err != nil {
		return nil, wrap("update category: lock row", err)
	}

	if upd.Name != nil {
		cat.Name = *upd.Name
	}
	if upd.Description != nil {
		cat.Description = *upd.Description
	}
	if upd.Color != nil {
		cat.Color = *upd.Color
	}
	if upd.Icon != nil {
		cat.Icon = *upd.Icon
	}
	if upd.SetParent {
		if upd.ParentID != nil {
			if err := lockMoveTarget(tx, id, *upd.ParentID, ownerID); err != nil {
				return nil, err
			}
		}
		cat.ParentID = upd.ParentID
	}

	row = tx.QueryRow(`
		UPDATE categories SET
			name = $1, description = $2, color = $3, icon = $4,
			parent_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+categoryColumns,
		cat.Name, cat.Description, cat.Color, cat.Icon, cat.ParentID, id,
	)
	updated, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category not found")
	}
	if err != nil {
		if uniqueViolation(err, siblingNameConstraint) {
			return nil, apperr.DuplicateName("a category named %q already exists here", cat.Name)
		}
		if fkViolation(err) {
			return nil, apperr.NotFound("parent category not found")
		}
		return nil, wrap("update category", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("update category: commit", err)
	}
	return updated, nil
}

// lockMoveTarget validates a re-parent inside an open transaction: the new
// parent must exist under the same owner, and the category being moved must
// not appear anywhere in the new parent's ancestor chain. Every visited row
// is locked FOR UPDATE so crossing moves either serialize or one of them
// aborts; neither outcome can commit a cycle.
func lockMoveTarget(tx *sql.Tx, id, newParentID string, ownerID uuid.UUID) error {
	if newParentID == id {
		return apperr.CyclicMove("a category cannot be its own parent")
	}

	var parent sql.NullString
	var parentOwner uuid.UUID
	err := tx.QueryRow(`
		SELECT parent_id, owner_id FROM categories WHERE id = $1 FOR UPDATE
	`, newParentID).Scan(&parent, &parentOwner)
	if err == sql.ErrNoRows {
		return apperr.NotFound("parent category not found")
	}
	if err != nil {
		return wrap("update category: lock parent", err)
	}
	if parentOwner != ownerID {
		return apperr.NotFound("parent category not found")
	}

	seen := map[string]bool{newParentID: true}
	for parent.Valid {
		cur := parent.String
		if cur == id {
			return apperr.CyclicMove("moving the category under %s would create a cycle", newParentID)
		}
		if seen[cur] {
			return fmt.Errorf("update category: ancestor chain of %s revisits %s", newParentID, cur)
		}
		seen[cur] = true

		err := tx.QueryRow(`SELECT parent_id FROM categories WHERE id = $1 FOR UPDATE`, cur).Scan(&parent)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return wrap("update category: lock ancestor", err)
		}
	}
	return nil
}

// DeleteCascade removes a category in a single transaction: children are
// promoted to promoteTo (the deleted node's former parent) and linked
// reports are reassigned to fallbackID. Either everything succeeds or the
// prior state stays fully intact.
func (s *CategoryStore) DeleteCascade(id string, promoteTo *string, fallbackID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return wrap("delete category: begin tx", err)
	}
	defer tx.Rollback()

	// Promote children one level up.
	if _, err := tx.Exec(`
		UPDATE categories SET parent_id = $1, updated_at = NOW()
		WHERE parent_id = $2
	`, promoteTo, id); err != nil {
		if uniqueViolation(err, siblingNameConstraint) {
			return apperr.DuplicateName("a child category name collides with a sibling under the new parent")
		}
		return wrap("delete category: promote children", err)
	}

	// Re-home orphaned reports on the fallback category.
	if _, err := tx.Exec(`
		UPDATE reports SET category_id = $1, updated_at = NOW()
		WHERE category_id = $2
	`, fallbackID, id); err != nil {
		return wrap("delete category: reassign reports", err)
	}

	res, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrap("delete category", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("category not found")
	}

	if err := tx.Commit(); err != nil {
		return wrap("delete category: commit", err)
	}
	return nil
}

// AncestorChain walks parent pointers from id up to its root, returning the
// visited ids starting with id itself. The walk fails if it revisits a node,
// which would mean the acyclicity invariant is already broken in the data.
func (s *CategoryStore) AncestorChain(id string) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)
	cur := id
	for {
		if seen[cur] {
			return nil, fmt.Errorf("ancestor chain of %s: cycle detected at %s", id, cur)
		}
		seen[cur] = true
		chain = append(chain, cur)

		var parent sql.NullString
		err := s.db.QueryRow(`SELECT parent_id FROM categories WHERE id = $1`, cur).Scan(&parent)
		if err == sql.ErrNoRows {
			// Chain ends at a missing row (the starting id itself may be gone).
			return chain, nil
		}
		if err != nil {
			return nil, wrap("ancestor chain", err)
		}
		if !parent.Valid {
			return chain, nil
		}
		cur = parent.String
	}
}
