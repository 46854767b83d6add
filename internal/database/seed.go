package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default owner account if no users exist. Predefined
// categories are not created here — the reconciliation job owns that.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default owner password.
	hash, err := bcrypt.GenerateFromPassword([]byte("owner"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
	`, "owner@reportdesk.local", string(hash), "Owner")
	if err != nil {
		return fmt.Errorf("seed insert owner: %w", err)
	}

	slog.Info("database seeded with default owner",
		"email", "owner@reportdesk.local",
		"password", "owner",
	)

	return nil
}
