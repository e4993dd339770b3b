// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iklimsesi/iklimsesi-go/internal/middleware"
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// TokenHandler serves self-service API token management. Tokens always
// act as their owning user; there is no separate token permission model.
type TokenHandler struct {
	queries *store.Queries
	events  *service.EventService
}

// NewTokenHandler creates a TokenHandler.
func NewTokenHandler(queries *store.Queries, events *service.EventService) *TokenHandler {
	return &TokenHandler{queries: queries, events: events}
}

type createTokenRequest struct {
	Name          string `json:"name"`
	ExpiresInDays int    `json:"expires_in_days,omitempty"` // 0 = no expiry
}

// Create handles POST /tokens. The raw token appears in this response
// only; storage keeps the hash.
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req createTokenRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Token name is required")
		return
	}
	if req.ExpiresInDays < 0 || req.ExpiresInDays > 365 {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"Expiry must be between 1 and 365 days, or omitted")
		return
	}

	rawToken, prefix, err := model.GenerateToken()
	if err != nil {
		WriteError(w, err)
		return
	}

	var expiresAt sql.NullTime
	if req.ExpiresInDays > 0 {
		expiresAt = sql.NullTime{
			Time:  time.Now().UTC().AddDate(0, 0, req.ExpiresInDays),
			Valid: true,
		}
	}

	token, err := h.queries.CreateToken(r.Context(), store.CreateTokenParams{
		UserID:    user.ID,
		Name:      strings.TrimSpace(req.Name),
		TokenHash: model.HashToken(rawToken),
		Prefix:    prefix,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "api token created",
		&user.ID, middleware.GetClientIP(r),
		map[string]any{"token_id": token.ID, "name": token.Name})

	WriteJSON(w, http.StatusCreated, map[string]any{
		"token":     token,
		"raw_token": rawToken,
	})
}

// List handles GET /tokens, returning the actor's own tokens.
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	tokens, err := h.queries.ListTokensForUser(r.Context(), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

// Revoke handles DELETE /tokens/{id}. Only the owner can revoke; a
// missing token and someone else's token are both 404.
func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid token ID")
		return
	}

	affected, err := h.queries.RevokeUserToken(r.Context(), id, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if affected == 0 {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}

	h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "api token revoked",
		&user.ID, middleware.GetClientIP(r), map[string]any{"token_id": id})

	WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
