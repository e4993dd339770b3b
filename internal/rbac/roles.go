// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package rbac

import (
	"fmt"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

// roleDefaults maps every role to its default permission set.
// Assigning a role seeds, but does not lock, a user's permission set;
// explicit grants and revocations edit the stored set directly.
var roleDefaults = map[model.Role][]Permission{
	model.RoleEditor: {
		BlogView, BlogCreate, BlogEdit,
		VoicesView, VoicesCreate,
		PagesView,
	},
	model.RoleModerator: {
		BlogView, BlogCreate, BlogEdit, BlogPublish,
		VoicesView, VoicesCreate, VoicesEdit, VoicesPublish,
		PagesView, PagesCreate, PagesEdit,
	},
	model.RoleAdmin: {
		BlogView, BlogCreate, BlogEdit, BlogDelete, BlogPublish,
		VoicesView, VoicesCreate, VoicesEdit, VoicesDelete, VoicesPublish,
		PagesView, PagesCreate, PagesEdit, PagesDelete, PagesPublish,
		UsersView, UsersCreate, UsersEdit,
		SettingsView,
	},
	model.RoleSuperAdmin: {
		BlogView, BlogCreate, BlogEdit, BlogDelete, BlogPublish,
		VoicesView, VoicesCreate, VoicesEdit, VoicesDelete, VoicesPublish,
		PagesView, PagesCreate, PagesEdit, PagesDelete, PagesPublish,
		UsersView, UsersCreate, UsersEdit, UsersDelete, UsersManageRoles,
		SettingsView, SettingsEdit,
	},
}

func init() {
	// The role map must stay exhaustive and inside the catalog. A role
	// added without an entry here is a startup failure, not a silent
	// empty-set fallback.
	for _, role := range model.ValidRoles {
		perms, ok := roleDefaults[role]
		if !ok || len(perms) == 0 {
			panic(fmt.Sprintf("rbac: role %q has no default permissions", role))
		}
		for _, p := range perms {
			if !IsKnown(p) {
				panic(fmt.Sprintf("rbac: role %q grants unknown permission %q", role, p))
			}
		}
	}
}

// DefaultPermissions returns the default permission set for a role.
// Roles reach this point through NormalizeRole, so a miss in the map is
// a programming error, not bad data; it panics rather than inventing a
// fallback tier.
func DefaultPermissions(role model.Role) []Permission {
	perms, ok := roleDefaults[role]
	if !ok {
		panic(fmt.Sprintf("rbac: role %q has no default permissions", role))
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// DefaultPermissionStrings returns the default permission set as plain
// strings, ready for JSON storage on a user row.
func DefaultPermissionStrings(role model.Role) []string {
	perms := DefaultPermissions(role)
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
