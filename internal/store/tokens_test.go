// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/testutil"
)

func TestTokenLifecycle(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	user := testutil.CreateUser(t, db, "api@iklimsesi.org", model.RoleEditor)

	raw, prefix, err := model.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if raw == "" || len(prefix) != 8 {
		t.Fatalf("raw=%q prefix=%q", raw, prefix)
	}
	hash := model.HashToken(raw)

	tok, err := queries.CreateToken(ctx, store.CreateTokenParams{
		UserID: user.ID, Name: "ci", TokenHash: hash, Prefix: prefix,
		ExpiresAt: sql.NullTime{Time: time.Now().UTC().Add(24 * time.Hour), Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if !tok.IsActive || !tok.IsValid() {
		t.Errorf("fresh token invalid: %+v", tok)
	}

	// Only the hash is stored; lookup goes through it.
	got, err := queries.GetTokenByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetTokenByHash: %v", err)
	}
	if got.ID != tok.ID {
		t.Errorf("lookup id = %d, want %d", got.ID, tok.ID)
	}

	affected, err := queries.RevokeUserToken(ctx, tok.ID, user.ID)
	if err != nil {
		t.Fatalf("RevokeUserToken: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	got, err = queries.GetTokenByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetTokenByHash after revoke: %v", err)
	}
	if got.IsValid() {
		t.Error("revoked token should not validate")
	}
}

func TestRevokeUserTokenScopedToOwner(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	owner := testutil.CreateUser(t, db, "owner@iklimsesi.org", model.RoleEditor)
	other := testutil.CreateUser(t, db, "other@iklimsesi.org", model.RoleEditor)

	raw, prefix, err := model.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	hash := model.HashToken(raw)
	tok, err := queries.CreateToken(ctx, store.CreateTokenParams{
		UserID: owner.ID, Name: "mine", TokenHash: hash, Prefix: prefix,
	})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	affected, err := queries.RevokeUserToken(ctx, tok.ID, other.ID)
	if err != nil {
		t.Fatalf("RevokeUserToken: %v", err)
	}
	if affected != 0 {
		t.Errorf("cross-user revoke affected = %d, want 0", affected)
	}

	got, err := queries.GetTokenByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetTokenByHash: %v", err)
	}
	if !got.IsActive {
		t.Error("token revoked by non-owner")
	}
}

func TestGetTokenByHashMissing(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	_, err := store.New(db).GetTokenByHash(context.Background(), model.HashToken("nope"))
	if !errors.Is(err, store.ErrNoRows) {
		t.Errorf("err = %v, want ErrNoRows", err)
	}
}
