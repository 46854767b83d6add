// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reportdesk/internal/apperr"
	"reportdesk/internal/models"
)

// ReportStore handles all report-related database operations.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore creates a new ReportStore with the given database connection.
func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

const reportColumns = `id, title, content, summary, status, priority, category_id, owner_id,
	word_count, file_path, file_size, file_mime, created_at, updated_at`

// scanReport scans a row into a Report struct.
func scanReport(scanner interface{ Scan(...any) error }) (*models.Report, error) {
	var rep models.Report
	err := scanner.Scan(
		&rep.ID, &rep.Title, &rep.Content, &rep.Summary, &rep.Status, &rep.Priority,
		&rep.CategoryID, &rep.OwnerID, &rep.WordCount,
		&rep.FilePath, &rep.FileSize, &rep.FileMime, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// FindByID retrieves a report by id, scoped to its owner. Returns nil if
// the report doesn't exist or belongs to someone else.
func (s *ReportStore) FindByID(id, ownerID uuid.UUID) (*models.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportColumns+` FROM reports WHERE id = $1 AND owner_id = $2`, id, ownerID)
	rep, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find report by id", err)
	}
	return rep, nil
}

// Create inserts a new report and returns it with the generated ID. The
// stored word count is derived from the content here so it stays in step
// with every write.
func (s *ReportStore) Create(rep *models.Report) (*models.Report, error) {
	row := s.db.QueryRow(`
		INSERT INTO reports (title, content, summary, status, priority, category_id,
		                     owner_id, word_count, file_path, file_size, file_mime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+reportColumns,
		rep.Title, rep.Content, rep.Summary, rep.Status, rep.Priority, rep.CategoryID,
		rep.OwnerID, models.CountWords(rep.Content), rep.FilePath, rep.FileSize, rep.FileMime,
	)
	result, err := scanReport(row)
	if err != nil {
		if fkViolation(err) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, wrap("create report", err)
	}
	return result, nil
}

// ReportUpdate is a partial column update. Nil fields are left untouched;
// SetCategory distinguishes "don't change" from "clear" (CategoryID nil).
type ReportUpdate struct {
	Title       *string
	Content     *string
	Summary     *string
	Status      *models.ReportStatus
	Priority    *models.ReportPriority
	CategoryID  *string
	SetCategory bool
	FilePath    *string
	FileSize    *int64
	FileMime    *string
}

// Update applies a partial update in one transaction, locking the row
// first so concurrent patches serialize instead of overwriting each
// other's columns. The stored word count is recomputed from the content
// that ends up persisted, so it stays in step with every write.
func (s *ReportStore) Update(id, ownerID uuid.UUID, upd ReportUpdate) (*models.Report, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, wrap("update report: begin tx", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		SELECT `+reportColumns+` FROM reports
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, id, ownerID)
	rep, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("report not found")
	}
	if err != nil {
		return nil, wrap("update report: lock row", err)
	}

	if upd.Title != nil {
		rep.Title = *upd.Title
	}
	if upd.Content != nil {
		rep.Content = *upd.Content
	}
	if upd.Summary != nil {
		rep.Summary = *upd.Summary
	}
	if upd.Status != nil {
		rep.Status = *upd.Status
	}
	if upd.Priority != nil {
		rep.Priority = *upd.Priority
	}
	if upd.SetCategory {
		rep.CategoryID = upd.CategoryID
	}
	if upd.FilePath != nil {
		rep.FilePath = upd.FilePath
	}
	if upd.FileSize != nil {
		rep.FileSize = upd.FileSize
	}
	if upd.FileMime != nil {
		rep.FileMime = upd.FileMime
	}

	row = tx.QueryRow(`
		UPDATE reports SET
			title = $1, content = $2, summary = $3, status = $4, priority = $5,
			category_id = $6, word_count = $7, file_path = $8, file_size = $9,
			file_mime = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING `+reportColumns,
		rep.Title, rep.Content, rep.Summary, rep.Status, rep.Priority,
		rep.CategoryID, models.CountWords(rep.Content), rep.FilePath, rep.FileSize,
		rep.FileMime, id,
	)
	updated, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("report not found")
	}
	if err != nil {
		if fkViolation(err) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, wrap("update report", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("update report: commit", err)
	}
	return updated, nil
}

// Delete removes a report. Join rows in report_tags go with it via the
// cascading foreign key. Returns false if nothing was deleted.
func (s *ReportStore) Delete(id, ownerID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM reports WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, wrap("delete report", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("delete report", err)
	}
	return n > 0, nil
}

// SearchFilter holds the optional, AND-combined report search criteria.
type SearchFilter struct {
	CategoryID *string        // exact match; the fallback id also matches NULL
	TagIDs     []uuid.UUID    // report must carry at least one of these
	Status     string
	Priority   string
	Query      string         // case-insensitive substring over title and content
	DateFrom   *time.Time     // inclusive, on created_at
	DateTo     *time.Time     // inclusive, on created_at
	SortField  string         // title, created_at, updated_at, word_count, file_size
	SortDir    string         // asc or desc
	Page       int            // 1-based
	Limit      int            // clamped to 1..MaxSearchLimit
}

// Pagination bounds for Search.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// sortColumns whitelists sortable fields. Anything else falls back to
// created_at.
var sortColumns = map[string]string{
	"title":      "r.title",
	"created_at": "r.created_at",
	"updated_at": "r.updated_at",
	"word_count": "r.word_count",
	"file_size":  "r.file_size",
}

// Search returns the page of reports matching the filter plus the total
// match count. It is a read-only projection over the latest committed
// state — no caching, no mutation.
func (s *ReportStore) Search(ownerID uuid.UUID, f SearchFilter, fallbackID string) ([]models.Report, int, error) {
	where := []string{"r.owner_id = $1"}
	args := []any{ownerID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != nil {
		if *f.CategoryID == fallbackID {
			// Reports with a NULL category belong to the fallback for
			// every read path.
			where = append(where, fmt.Sprintf("(r.category_id = %s OR r.category_id IS NULL)", arg(fallbackID)))
		} else {
			where = append(where, "r.category_id = "+arg(*f.CategoryID))
		}
	}
	if len(f.TagIDs) > 0 {
		placeholders := make([]string, len(f.TagIDs))
		for i, tagID := range f.TagIDs {
			placeholders[i] = arg(tagID)
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM report_tags rt WHERE rt.report_id = r.id AND rt.tag_id IN (%s))",
			strings.Join(placeholders, ", ")))
	}
	if f.Status != "" {
		where = append(where, "r.status = "+arg(f.Status))
	}
	if f.Priority != "" {
		where = append(where, "r.priority = "+arg(f.Priority))
	}
	if f.Query != "" {
		pattern := "%" + escapeLike(f.Query) + "%"
		p := arg(pattern)
		where = append(where, fmt.Sprintf("(r.title ILIKE %s OR r.content ILIKE %s)", p, p))
	}
	if f.DateFrom != nil {
		where = append(where, "r.created_at >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		where = append(where, "r.created_at <= "+arg(*f.DateTo))
	}

	whereClause := strings.Join(where, " AND ")

	// Total match count for client-side page computation.
	var total int
	countQuery := "SELECT COUNT(*) FROM reports r WHERE " + whereClause
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, wrap("search reports: count", err)
	}

	col, ok := sortColumns[f.SortField]
	if !ok {
		col = "r.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}

	limit := f.Limit
	if limit < 1 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	// Ties break on id ascending so pagination is deterministic.
	query := fmt.Sprintf(`
		SELECT %s FROM reports r
		WHERE %s
		ORDER BY %s %s, r.id ASC
		LIMIT %s OFFSET %s
	`, reportColumns, whereClause, col, dir,
		arg(limit), arg((page-1)*limit))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, wrap("search reports", err)
	}
	defer rows.Close()

	var items []models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, *rep)
	}
	return items, total, rows.Err()
}

// escapeLike escapes the LIKE metacharacters so user queries match
// literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
