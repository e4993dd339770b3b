// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

// userTTL is deliberately short: a permission revocation must take
// effect within this window on instances that miss the invalidation.
const userTTL = 30 * time.Second

// Users caches resolved users, including their permission sets, keyed by
// user ID. Cache failures degrade to database reads and are only logged.
type Users struct {
	store Store
}

// NewUsers creates a user cache over a Store.
func NewUsers(store Store) *Users {
	return &Users{store: store}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get returns the cached user, or false when absent.
func (c *Users) Get(ctx context.Context, id int64) (model.User, bool) {
	data, ok, err := c.store.Get(ctx, userKey(id))
	if err != nil {
		slog.Warn("user cache get failed", "error", err, "user_id", id)
		return model.User{}, false
	}
	if !ok {
		return model.User{}, false
	}

	var u cachedUser
	if err := json.Unmarshal(data, &u); err != nil {
		return model.User{}, false
	}
	return u.toModel(), true
}

// Set caches a user.
func (c *Users) Set(ctx context.Context, user model.User) {
	data, err := json.Marshal(fromModel(user))
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, userKey(user.ID), data, userTTL); err != nil {
		slog.Warn("user cache set failed", "error", err, "user_id", user.ID)
	}
}

// Invalidate drops a user from the cache. Called on every user mutation
// (role change, grant, revocation, deactivation).
func (c *Users) Invalidate(ctx context.Context, id int64) {
	if err := c.store.Delete(ctx, userKey(id)); err != nil {
		slog.Warn("user cache invalidate failed", "error", err, "user_id", id)
	}
}

// cachedUser is the cache wire form; model.User hides sensitive fields
// from JSON, so the cache carries them explicitly.
type cachedUser struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        model.Role `json:"role"`
	Permissions string     `json:"permissions"`
	IsActive    bool       `json:"is_active"`
}

func fromModel(u model.User) cachedUser {
	return cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Permissions: u.Permissions,
		IsActive:    u.IsActive,
	}
}

func (c cachedUser) toModel() model.User {
	return model.User{
		ID:          c.ID,
		Email:       c.Email,
		Name:        c.Name,
		Role:        c.Role,
		Permissions: c.Permissions,
		IsActive:    c.IsActive,
	}
}
