// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// ReportDesk API. Routes are grouped into a public slice (health, login)
// and an authenticated slice that requires a session.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reportdesk/internal/handlers"
	"reportdesk/internal/middleware"
	"reportdesk/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(
	sessionStore *session.Store,
	auth *handlers.Auth,
	categories *handlers.Categories,
	reports *handlers.Reports,
	tags *handlers.Tags,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Login is rate-limited by client IP to slow credential stuffing.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	r.With(loginLimiter.Middleware).Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)

	// Authenticated API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Post("/", categories.Create)
			r.Patch("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reports.Search)
			r.Post("/", reports.Create)
			r.Get("/{id}", reports.Get)
			r.Patch("/{id}", reports.Update)
			r.Delete("/{id}", reports.Delete)
			r.Post("/{id}/tags/{tagID}", reports.AttachTag)
			r.Delete("/{id}/tags/{tagID}", reports.DetachTag)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tags.List)
			r.Post("/", tags.Create)
			r.Delete("/{id}", tags.Delete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
