// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for identity resolution,
// authorization, and login protection.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity is the context key for the resolved identity.
const ContextKeyIdentity ContextKey = "identity"

// LoadIdentity creates middleware that resolves the request's actor and
// stores the Identity in the context. Resolution never fails the
// request; unauthenticated is a normal state.
func LoadIdentity(resolver *session.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolver.Resolve(r)
			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the resolved identity from the request context.
// Returns the unauthenticated identity if none was stored.
func GetIdentity(r *http.Request) session.Identity {
	identity, ok := r.Context().Value(ContextKeyIdentity).(session.Identity)
	if !ok {
		return session.Identity{}
	}
	return identity
}

// GetUser returns the resolved user, or nil when unauthenticated.
func GetUser(r *http.Request) *model.User {
	identity := GetIdentity(r)
	if !identity.IsAuthenticated() {
		return nil
	}
	return identity.User
}

// RequireAuth creates middleware that rejects unauthenticated requests.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetIdentity(r).IsAuthenticated() {
				WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Please sign in")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission creates middleware that consults the authorization
// gate for a permission with no ownership dimension. Content routes with
// ownership semantics authorize inside the workflow engine instead.
func RequirePermission(required rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := rbac.Authorize(GetUser(r), required, 0)
			if !decision.Allowed {
				if decision.Reason == rbac.DenyUnauthenticated {
					WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Please sign in")
					return
				}

				user := GetUser(r)
				var userID int64
				if user != nil {
					userID = user.ID
				}
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", userID,
					"remote_addr", r.RemoteAddr,
				)

				// Generic denial; never reveal which permission was missing.
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
