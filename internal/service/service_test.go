// service_test.go provides shared helpers for the service integration
// tests. Tests are skipped if PostgreSQL is not available.
package service

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"reportdesk/internal/database"
	"reportdesk/internal/notify"
	"reportdesk/internal/store"
)

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "reportdesk")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "reportdesk")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv bundles the stores and services wired against the test database
// under a fresh throwaway owner.
type testEnv struct {
	db         *sql.DB
	ownerID    uuid.UUID
	categories *CategoryService
	reports    *ReportService
	reconciler *Reconciler
	catStore   *store.CategoryStore
	repStore   *store.ReportStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)

	var ownerID uuid.UUID
	email := "svc-" + uuid.NewString() + "@service.local"
	err := db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, 'x', 'Service Test') RETURNING id
	`, email).Scan(&ownerID)
	if err != nil {
		t.Fatalf("insert test owner: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM reports WHERE owner_id = $1`, ownerID)
		db.Exec(`DELETE FROM categories WHERE owner_id = $1`, ownerID)
		db.Exec(`DELETE FROM users WHERE id = $1`, ownerID)
	})

	catStore := store.NewCategoryStore(db)
	repStore := store.NewReportStore(db)
	return &testEnv{
		db:         db,
		ownerID:    ownerID,
		categories: NewCategoryService(catStore, notify.Noop{}),
		reports:    NewReportService(repStore, catStore),
		reconciler: NewReconciler(catStore),
		catStore:   catStore,
		repStore:   repStore,
	}
}

func strPtr(s string) *string { return &s }
