package handlers

import (
	"log/slog"
	"net/http"

	"reportdesk/internal/apperr"
	"reportdesk/internal/models"
	"reportdesk/internal/session"
	"reportdesk/internal/store"
)

// Auth groups the authentication boundary handlers. Everything past login
// only sees a resolved owner id — identity is this layer's whole job.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues a session cookie.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, apperr.Validation("email and password are required"))
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, err)
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "invalid email or password",
			Kind:  "unauthorized",
		})
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal server error", Kind: "internal",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.User{"user": *user})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
