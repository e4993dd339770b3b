// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/testutil"
)

type tokenFixture struct {
	handler *TokenHandler
	queries *store.Queries
	owner   model.User
	other   model.User
}

func newTokenFixture(t *testing.T) (*tokenFixture, func()) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	queries := store.New(db)

	return &tokenFixture{
		handler: NewTokenHandler(queries, service.NewEventService(db)),
		queries: queries,
		owner:   testutil.CreateUser(t, db, "owner@iklimsesi.org", model.RoleEditor),
		other:   testutil.CreateUser(t, db, "other@iklimsesi.org", model.RoleEditor),
	}, cleanup
}

type createTokenResponse struct {
	Token    model.APIToken `json:"token"`
	RawToken string         `json:"raw_token"`
}

func (f *tokenFixture) create(t *testing.T, user *model.User, body string) createTokenResponse {
	t.Helper()

	rec := httptest.NewRecorder()
	f.handler.Create(rec, apiRequest(http.MethodPost, "/tokens", body, user, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create token = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp createTokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	return resp
}

func TestTokenCreate(t *testing.T) {
	f, cleanup := newTokenFixture(t)
	defer cleanup()

	resp := f.create(t, &f.owner, `{"name":"ci","expires_in_days":30}`)

	if resp.RawToken == "" {
		t.Fatal("raw token missing from creation response")
	}
	if resp.Token.TokenHash != "" {
		t.Error("token hash leaked into the response")
	}
	if resp.Token.Prefix != resp.RawToken[:8] {
		t.Errorf("prefix = %s, raw starts %s", resp.Token.Prefix, resp.RawToken[:8])
	}
	if !resp.Token.ExpiresAt.Valid {
		t.Error("expiry not set")
	}

	// The raw token resolves via its hash.
	stored, err := f.queries.GetTokenByHash(t.Context(), model.HashToken(resp.RawToken))
	if err != nil {
		t.Fatalf("GetTokenByHash: %v", err)
	}
	if stored.UserID != f.owner.ID {
		t.Errorf("token owner = %d, want %d", stored.UserID, f.owner.ID)
	}
}

func TestTokenCreateValidation(t *testing.T) {
	f, cleanup := newTokenFixture(t)
	defer cleanup()

	for _, body := range []string{
		`{"name":""}`,
		`{"name":"  "}`,
		`{"name":"x","expires_in_days":-1}`,
		`{"name":"x","expires_in_days":400}`,
	} {
		rec := httptest.NewRecorder()
		f.handler.Create(rec, apiRequest(http.MethodPost, "/tokens", body, &f.owner, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q = %d, want 400", body, rec.Code)
		}
	}
}

func TestTokenListReturnsOwnOnly(t *testing.T) {
	f, cleanup := newTokenFixture(t)
	defer cleanup()

	f.create(t, &f.owner, `{"name":"mine"}`)
	f.create(t, &f.other, `{"name":"theirs"}`)

	rec := httptest.NewRecorder()
	f.handler.List(rec, apiRequest(http.MethodGet, "/tokens", "", &f.owner, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}

	var resp struct {
		Tokens []model.APIToken `json:"tokens"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(resp.Tokens) != 1 || resp.Tokens[0].Name != "mine" {
		t.Errorf("tokens = %+v", resp.Tokens)
	}
}

func TestTokenRevoke(t *testing.T) {
	f, cleanup := newTokenFixture(t)
	defer cleanup()

	created := f.create(t, &f.owner, `{"name":"kill-me"}`)
	params := map[string]string{"id": strconv.FormatInt(created.Token.ID, 10)}

	// Someone else's revocation looks like a missing token.
	rec := httptest.NewRecorder()
	f.handler.Revoke(rec, apiRequest(http.MethodDelete, "/tokens", "", &f.other, params))
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user revoke = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.handler.Revoke(rec, apiRequest(http.MethodDelete, "/tokens", "", &f.owner, params))
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := f.queries.GetTokenByHash(t.Context(), model.HashToken(created.RawToken))
	if err != nil {
		t.Fatalf("GetTokenByHash: %v", err)
	}
	if stored.IsValid() {
		t.Error("revoked token still valid")
	}

	// Revoking again is a 404.
	rec = httptest.NewRecorder()
	f.handler.Revoke(rec, apiRequest(http.MethodDelete, "/tokens", "", &f.owner, params))
	if rec.Code != http.StatusNotFound {
		t.Errorf("double revoke = %d, want 404", rec.Code)
	}
}
