// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/auth"
	"github.com/iklimsesi/iklimsesi-go/internal/middleware"
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/session"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// AuthHandler serves login, logout, and the current-user endpoint.
type AuthHandler struct {
	queries    *store.Queries
	resolver   *session.Resolver
	protection *middleware.LoginProtection
	events     *service.EventService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(queries *store.Queries, resolver *session.Resolver, protection *middleware.LoginProtection, events *service.EventService) *AuthHandler {
	return &AuthHandler{
		queries:    queries,
		resolver:   resolver,
		protection: protection,
		events:     events,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. Credential failures are
// indistinguishable from unknown accounts in the response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Email and password are required")
		return
	}

	ip := middleware.GetClientIP(r)

	if locked, remaining := h.protection.IsAccountLocked(email); locked {
		h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"login attempt on locked account", nil, ip,
			map[string]any{"email": email, "remaining": remaining.String()})
		middleware.WriteAPIError(w, http.StatusTooManyRequests, "account_locked",
			"Account temporarily locked. Try again later.")
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, store.ErrNoRows) {
			WriteError(w, err)
			return
		}
		h.failLogin(w, r, email, ip, nil)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok || !user.IsActive {
		h.failLogin(w, r, email, ip, &user.ID)
		return
	}

	h.protection.RecordSuccessfulLogin(email)

	if err := h.resolver.RecordLogin(r, user); err != nil {
		WriteError(w, err)
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		go h.rehash(user.ID, req.Password)
	}

	h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "user logged in",
		&user.ID, ip, map[string]any{"email": email})

	WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, email, ip string, userID *int64) {
	locked, duration := h.protection.RecordFailedAttempt(email)

	h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "failed login attempt",
		userID, ip, map[string]any{"email": email})

	if locked {
		h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "account locked",
			userID, ip, map[string]any{"email": email, "duration": duration.String()})
	}

	middleware.WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials",
		"Invalid email or password")
}

func (h *AuthHandler) rehash(userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("password rehash failed", "error", err, "user_id", userID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.queries.UpdateUserPassword(ctx, userID, hash); err != nil {
		slog.Error("password rehash store failed", "error", err, "user_id", userID)
	}
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.resolver.Logout(r); err != nil {
		WriteError(w, err)
		return
	}

	if user != nil {
		h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "user logged out",
			&user.ID, middleware.GetClientIP(r), nil)
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /auth/me, returning the resolved actor.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Please sign in")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"permissions": user.PermissionSet(),
	})
}
