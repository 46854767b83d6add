// handlers_test.go provides shared helpers for the handler tests. The
// request-shape tests run anywhere; the end-to-end tests are skipped if
// PostgreSQL is not available.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"reportdesk/internal/database"
	"reportdesk/internal/middleware"
	"reportdesk/internal/notify"
	"reportdesk/internal/service"
	"reportdesk/internal/session"
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

// testEnv wires the full handler stack against the test database under a
// throwaway owner.
type testEnv struct {
	db         *sql.DB
	ownerID    uuid.UUID
	categories *Categories
	reports    *Reports
	tags       *Tags
	tagStore   *store.TagStore
}

func newTestEnv(t *testing.T) *testEnv {
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

	var ownerID uuid.UUID
	email := "h-" + uuid.NewString() + "@handlers.local"
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, 'x', 'Handler Test') RETURNING id
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
	tagStore := store.NewTagStore(db)
	catSvc := service.NewCategoryService(catStore, notify.Noop{})
	repSvc := service.NewReportService(repStore, catStore)

	return &testEnv{
		db:         db,
		ownerID:    ownerID,
		categories: NewCategories(catSvc),
		reports:    NewReports(repSvc, tagStore),
		tags:       NewTags(tagStore),
		tagStore:   tagStore,
	}
}

// authed stamps the request with a session so OwnerFromCtx resolves.
func authed(r *http.Request, ownerID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionKey, &session.Data{
		UserID: ownerID, Email: "h@handlers.local",
	})
	return r.WithContext(ctx)
}

// withURLParams injects chi route parameters into the request context.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
