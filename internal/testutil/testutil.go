// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "iklimsesi-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateUser inserts an active user with the role's default permission set.
// The password hash is a placeholder; use auth.HashPassword in tests that
// exercise the login path.
func CreateUser(t *testing.T, db *sql.DB, email string, role model.Role) model.User {
	t.Helper()

	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         role,
		Permissions:  model.PermissionsToJSON(rbac.DefaultPermissionStrings(role)),
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return user
}

// CreateContent inserts a draft content item owned by authorID.
func CreateContent(t *testing.T, db *sql.DB, kind model.ContentKind, title, slug string, authorID int64) model.ContentItem {
	t.Helper()

	item, err := store.New(db).CreateContent(context.Background(), store.CreateContentParams{
		Kind:     kind,
		Title:    title,
		Slug:     slug,
		Body:     "Body text.",
		AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("CreateContent(%s): %v", slug, err)
	}
	return item
}
