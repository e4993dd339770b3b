// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iklimsesi/iklimsesi-go/internal/cache"
	"github.com/iklimsesi/iklimsesi-go/internal/config"
	"github.com/iklimsesi/iklimsesi-go/internal/middleware"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/session"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/workflow"
)

// RouterDeps carries the wired application services the router needs.
type RouterDeps struct {
	Config         *config.Config
	DB             *sql.DB
	Queries        *store.Queries
	SessionManager *scs.SessionManager
	Resolver       *session.Resolver
	Users          *cache.Users
	Engine         *workflow.Engine
	Events         *service.EventService
	Protection     *middleware.LoginProtection
}

// NewRouter builds the chi router for the admin API.
func NewRouter(d RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Use(d.SessionManager.LoadAndSave)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(d.Config.SessionSecret), d.Config.IsDevelopment())
	r.Use(middleware.SkipCSRFForBearer())
	r.Use(middleware.CSRF(csrfConfig))

	r.Use(middleware.LoadIdentity(d.Resolver))

	authHandler := NewAuthHandler(d.Queries, d.Resolver, d.Protection, d.Events)
	userHandler := NewUserHandler(d.Queries, d.Users, d.Events)
	contentHandler := NewContentHandler(d.Engine, d.Queries)
	tokenHandler := NewTokenHandler(d.Queries, d.Events)
	eventHandler := NewEventHandler(d.Queries)
	healthHandler := NewHealthHandler(d.DB)

	r.Get("/healthz", healthHandler.Check)

	r.Route("/auth", func(r chi.Router) {
		r.With(d.Protection.Middleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// Public view counting; everything else below requires authentication.
	r.Post("/content/{collection}/{id}/view", contentHandler.RecordView)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())

		r.Route("/content/{collection}", func(r chi.Router) {
			r.Get("/", contentHandler.List)
			r.Post("/", contentHandler.Create)
			r.Get("/{id}", contentHandler.Get)
			r.Put("/{id}", contentHandler.Update)
			r.Delete("/{id}", contentHandler.Delete)
			r.Post("/{id}/transition", contentHandler.Transition)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequirePermission(rbac.UsersView)).Get("/", userHandler.List)
			r.With(middleware.RequirePermission(rbac.UsersView)).Get("/{id}", userHandler.Get)
			r.With(middleware.RequirePermission(rbac.UsersCreate)).Post("/", userHandler.Create)
			r.With(middleware.RequirePermission(rbac.UsersManageRoles)).Put("/{id}/role", userHandler.UpdateRole)
			r.With(middleware.RequirePermission(rbac.UsersManageRoles)).Post("/{id}/permissions", userHandler.GrantPermission)
			r.With(middleware.RequirePermission(rbac.UsersManageRoles)).Delete("/{id}/permissions", userHandler.RevokePermission)
			r.With(middleware.RequirePermission(rbac.UsersEdit)).Put("/{id}/active", userHandler.SetActive)
			r.With(middleware.RequirePermission(rbac.UsersDelete)).Delete("/{id}", userHandler.Delete)
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Get("/", tokenHandler.List)
			r.Post("/", tokenHandler.Create)
			r.Delete("/{id}", tokenHandler.Revoke)
		})

		r.With(middleware.RequirePermission(rbac.SettingsView)).Get("/events", eventHandler.List)
	})

	return r
}
