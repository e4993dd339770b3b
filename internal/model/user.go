// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including AdminUser, ContentItem, and audit event structures.
package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Role identifies one of the four admin role tiers.
type Role string

// Admin roles, ordered by increasing privilege.
const (
	RoleEditor     Role = "editor"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Legacy roles found in older exports. Mapped onto editor during migration,
// never part of the steady-state role set.
const (
	legacyRoleContentManager  = "content_manager"
	legacyRoleAnalyticsViewer = "analytics_viewer"
)

// ValidRoles contains all current admin roles.
var ValidRoles = []Role{RoleEditor, RoleModerator, RoleAdmin, RoleSuperAdmin}

// Level returns a numeric level for role hierarchy.
// Higher level = more privilege. Unknown roles have level 0.
func (r Role) Level() int {
	switch r {
	case RoleEditor:
		return 1
	case RoleModerator:
		return 2
	case RoleAdmin:
		return 3
	case RoleSuperAdmin:
		return 4
	default:
		return 0
	}
}

// Valid reports whether r is one of the current admin roles.
func (r Role) Valid() bool {
	return r.Level() > 0
}

// IsAdminTier reports whether r is admin or super_admin.
func (r Role) IsAdminTier() bool {
	return r.Level() >= RoleAdmin.Level()
}

// IsModeratorTier reports whether r is moderator or above.
func (r Role) IsModeratorTier() bool {
	return r.Level() >= RoleModerator.Level()
}

// NormalizeRole maps a stored role string onto a current role.
// Legacy roles alias to editor; anything unrecognized also falls back to
// editor so imported data can never mint an unknown privilege tier.
func NormalizeRole(s string) Role {
	switch s {
	case legacyRoleContentManager, legacyRoleAnalyticsViewer:
		return RoleEditor
	}
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleEditor
}

// User represents an admin back-office user.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Name         string       `json:"name"`
	Role         Role         `json:"role"`
	Permissions  string       `json:"-"` // JSON array stored as string
	IsActive     bool         `json:"is_active"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// PermissionSet parses the JSON permissions string into a slice.
func (u *User) PermissionSet() []string {
	var perms []string
	if u.Permissions == "" || u.Permissions == "[]" {
		return perms
	}
	_ = json.Unmarshal([]byte(u.Permissions), &perms)
	return perms
}

// HasPermission checks if the user holds a specific permission.
// An inactive user holds no permissions regardless of the stored set.
func (u *User) HasPermission(perm string) bool {
	if !u.IsActive {
		return false
	}
	for _, p := range u.PermissionSet() {
		if p == perm {
			return true
		}
	}
	return false
}

// IsAdminTier reports whether the user is in the admin or super_admin tier.
func (u *User) IsAdminTier() bool {
	return u.Role.IsAdminTier()
}

// IsModeratorTier reports whether the user is in the moderator tier or above.
func (u *User) IsModeratorTier() bool {
	return u.Role.IsModeratorTier()
}

// PermissionsToJSON converts a slice of permissions to a JSON string.
func PermissionsToJSON(perms []string) string {
	if len(perms) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(perms)
	return string(data)
}
