// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package rbac provides the permission catalog, the role-to-permission
// map, and the authorization gate consulted by every mutating operation.
package rbac

import "strings"

// Permission is an opaque capability token from the closed catalog,
// namespaced resource.action. No permissions are minted at runtime.
type Permission string

// Blog post permissions.
const (
	BlogView    Permission = "blog.view"
	BlogCreate  Permission = "blog.create"
	BlogEdit    Permission = "blog.edit"
	BlogDelete  Permission = "blog.delete"
	BlogPublish Permission = "blog.publish"
)

// Voice (user story) permissions.
const (
	VoicesView    Permission = "voices.view"
	VoicesCreate  Permission = "voices.create"
	VoicesEdit    Permission = "voices.edit"
	VoicesDelete  Permission = "voices.delete"
	VoicesPublish Permission = "voices.publish"
)

// Page permissions.
const (
	PagesView    Permission = "pages.view"
	PagesCreate  Permission = "pages.create"
	PagesEdit    Permission = "pages.edit"
	PagesDelete  Permission = "pages.delete"
	PagesPublish Permission = "pages.publish"
)

// User management permissions.
const (
	UsersView        Permission = "users.view"
	UsersCreate      Permission = "users.create"
	UsersEdit        Permission = "users.edit"
	UsersDelete      Permission = "users.delete"
	UsersManageRoles Permission = "users.manage_roles"
)

// Settings permissions.
const (
	SettingsView Permission = "settings.view"
	SettingsEdit Permission = "settings.edit"
)

// catalog is the full closed permission catalog, grouped by resource.
var catalog = []Permission{
	BlogView, BlogCreate, BlogEdit, BlogDelete, BlogPublish,
	VoicesView, VoicesCreate, VoicesEdit, VoicesDelete, VoicesPublish,
	PagesView, PagesCreate, PagesEdit, PagesDelete, PagesPublish,
	UsersView, UsersCreate, UsersEdit, UsersDelete, UsersManageRoles,
	SettingsView, SettingsEdit,
}

// catalogSet indexes the catalog for membership checks.
var catalogSet = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		m[p] = struct{}{}
	}
	return m
}()

// Catalog returns a copy of the full permission catalog.
func Catalog() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// IsKnown reports whether p belongs to the catalog.
func IsKnown(p Permission) bool {
	_, ok := catalogSet[p]
	return ok
}

// Resource returns the resource namespace of the permission
// (the part before the dot).
func (p Permission) Resource() string {
	if i := strings.IndexByte(string(p), '.'); i > 0 {
		return string(p)[:i]
	}
	return string(p)
}

// crossAuthor lists permissions whose explicit grant extends a non-admin
// actor's reach to content authored by others. Publishing is moderation
// by nature; voices.edit covers the review queue.
var crossAuthor = map[Permission]struct{}{
	BlogPublish:   {},
	VoicesPublish: {},
	PagesPublish:  {},
	VoicesEdit:    {},
	VoicesDelete:  {},
}

// IsCrossAuthor reports whether holding p lets a non-admin actor operate
// on content they did not author.
func IsCrossAuthor(p Permission) bool {
	_, ok := crossAuthor[p]
	return ok
}
