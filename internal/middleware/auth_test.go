package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"reportdesk/internal/session"
)

// testSessionStore backs a session store with an in-process miniredis.
func testSessionStore(t *testing.T) *session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return session.NewStore(client, false)
}

func TestLoadSessionAndRequireOwner(t *testing.T) {
	store := testSessionStore(t)
	userID := uuid.New()

	w := httptest.NewRecorder()
	if _, err := store.Create(context.Background(), w, &session.Data{
		UserID: userID, Email: "mw@test.local", DisplayName: "MW",
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := w.Result().Cookies()[0]

	var gotOwner uuid.UUID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = OwnerFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := LoadSession(store)(RequireOwner(inner))

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if gotOwner != userID {
		t.Errorf("owner id: got %s, want %s", gotOwner, userID)
	}
}

func TestRequireOwnerRejectsAnonymous(t *testing.T) {
	store := testSessionStore(t)

	handler := LoadSession(store)(RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	})))

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"kind":"unauthorized"`) {
		t.Errorf("body missing error kind: %s", rr.Body.String())
	}
}

func TestSessionFromCtxEmpty(t *testing.T) {
	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("expected nil session, got %+v", got)
	}
	if got := OwnerFromCtx(context.Background()); got != uuid.Nil {
		t.Errorf("expected uuid.Nil owner, got %s", got)
	}
}
