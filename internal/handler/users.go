// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iklimsesi/iklimsesi-go/internal/auth"
	"github.com/iklimsesi/iklimsesi-go/internal/cache"
	"github.com/iklimsesi/iklimsesi-go/internal/middleware"
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// UserHandler serves user administration endpoints.
type UserHandler struct {
	queries *store.Queries
	users   *cache.Users
	events  *service.EventService
}

// NewUserHandler creates a UserHandler. users may be nil to disable cache
// invalidation.
func NewUserHandler(queries *store.Queries, users *cache.Users, events *service.EventService) *UserHandler {
	return &UserHandler{queries: queries, users: users, events: events}
}

func (h *UserHandler) invalidate(r *http.Request, id int64) {
	if h.users != nil {
		h.users.Invalidate(r.Context(), id)
	}
}

func userIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Create handles POST /users. The new user's permission set is seeded
// from the role defaults.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"Email, password, and name are required")
		return
	}
	if len(req.Password) < 8 {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"Password must be at least 8 characters")
		return
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Unknown role")
		return
	}

	// Assigning a role above editor requires the role-management permission.
	actor := middleware.GetUser(r)
	if role != model.RoleEditor {
		if d := rbac.Authorize(actor, rbac.UsersManageRoles, 0); !d.Allowed {
			WriteError(w, d.Err())
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Permissions:  model.PermissionsToJSON(rbac.DefaultPermissionStrings(role)),
		IsActive:     true,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			middleware.WriteAPIError(w, http.StatusConflict, "email_taken", "Email is already registered")
			return
		}
		WriteError(w, err)
		return
	}

	h.events.LogUserEvent(r.Context(), model.EventLevelInfo, "user created",
		&actor.ID, middleware.GetClientIP(r),
		map[string]any{"created_id": user.ID, "email": email, "role": string(role)})

	WriteJSON(w, http.StatusCreated, user)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)

	users, err := h.queries.ListUsers(r.Context(), store.ListUsersParams{Limit: limit, Offset: offset})
	if err != nil {
		WriteError(w, err)
		return
	}
	total, err := h.queries.CountUsers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users, "total": total})
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid user ID")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
			return
		}
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"permissions": user.PermissionSet(),
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles PUT /users/{id}/role. A role change replaces the
// user's permission set with the new role's defaults; earlier grants and
// revocations do not survive it.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid user ID")
		return
	}

	var req updateRoleRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Unknown role")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
			return
		}
		WriteError(w, err)
		return
	}

	actor := middleware.GetUser(r)
	if actor.ID == user.ID {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"You cannot change your own role")
		return
	}

	err = h.queries.UpdateUserRole(r.Context(), store.UpdateUserRoleParams{
		ID:          id,
		Role:        role,
		Permissions: model.PermissionsToJSON(rbac.DefaultPermissionStrings(role)),
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	h.invalidate(r, id)

	h.events.LogUserEvent(r.Context(), model.EventLevelInfo, "user role changed",
		&actor.ID, middleware.GetClientIP(r),
		map[string]any{"target_id": id, "from": string(user.Role), "to": string(role)})

	updated, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

type permissionRequest struct {
	Permission string `json:"permission"`
}

// GrantPermission handles POST /users/{id}/permissions. Only permissions
// from the catalog can be granted.
func (h *UserHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	h.editPermissions(w, r, "permission granted", func(perms []string, perm string) []string {
		if slices.Contains(perms, perm) {
			return perms
		}
		return append(perms, perm)
	})
}

// RevokePermission handles DELETE /users/{id}/permissions.
func (h *UserHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	h.editPermissions(w, r, "permission revoked", func(perms []string, perm string) []string {
		return slices.DeleteFunc(perms, func(p string) bool { return p == perm })
	})
}

func (h *UserHandler) editPermissions(w http.ResponseWriter, r *http.Request, message string, apply func([]string, string) []string) {
	id, err := userIDParam(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid user ID")
		return
	}

	var req permissionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	if !rbac.IsKnown(rbac.Permission(req.Permission)) {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Unknown permission")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
			return
		}
		WriteError(w, err)
		return
	}

	perms := apply(user.PermissionSet(), req.Permission)
	if err := h.queries.UpdateUserPermissions(r.Context(), id, model.PermissionsToJSON(perms)); err != nil {
		WriteError(w, err)
		return
	}
	h.invalidate(r, id)

	actor := middleware.GetUser(r)
	h.events.LogUserEvent(r.Context(), model.EventLevelInfo, message,
		&actor.ID, middleware.GetClientIP(r),
		map[string]any{"target_id": id, "permission": req.Permission})

	updated, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user":        updated,
		"permissions": updated.PermissionSet(),
	})
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetActive handles PUT /users/{id}/active. Deactivation is immediate up
// to the user-cache TTL on other instances.
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid user ID")
		return
	}

	var req setActiveRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	actor := middleware.GetUser(r)
	if actor.ID == id && !req.IsActive {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"You cannot deactivate your own account")
		return
	}

	if err := h.queries.SetUserActive(r.Context(), id, req.IsActive); err != nil {
		WriteError(w, err)
		return
	}
	h.invalidate(r, id)

	message := "user deactivated"
	if req.IsActive {
		message = "user reactivated"
	}
	h.events.LogUserEvent(r.Context(), model.EventLevelInfo, message,
		&actor.ID, middleware.GetClientIP(r), map[string]any{"target_id": id})

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete handles DELETE /users/{id}. Users referenced by audit events are
// deactivated instead of deleted so the trail stays attributable.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid user ID")
		return
	}

	actor := middleware.GetUser(r)
	if actor.ID == id {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request",
			"You cannot delete your own account")
		return
	}

	count, err := h.queries.CountEventsForUser(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if count > 0 {
		if err := h.queries.SetUserActive(r.Context(), id, false); err != nil {
			WriteError(w, err)
			return
		}
		h.invalidate(r, id)
		h.events.LogUserEvent(r.Context(), model.EventLevelInfo,
			"user deactivated instead of deleted",
			&actor.ID, middleware.GetClientIP(r),
			map[string]any{"target_id": id, "event_count": count})
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
		return
	}

	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	h.invalidate(r, id)

	h.events.LogUserEvent(r.Context(), model.EventLevelInfo, "user deleted",
		&actor.ID, middleware.GetClientIP(r), map[string]any{"target_id": id})

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// pagination reads limit/offset query parameters with a default limit.
func pagination(r *http.Request, defaultLimit int64) (limit, offset int64) {
	limit = defaultLimit
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
