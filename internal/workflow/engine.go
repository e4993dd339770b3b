// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/content"
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/seo"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/util"
)

// excerptLength is the maximum excerpt size derived from the body.
const excerptLength = 200

// Engine applies content operations under the authorization gate and the
// per-kind transition tables. Every mutating entry point goes through
// here; handlers never touch the store directly for content.
type Engine struct {
	queries *store.Queries
	sitemap *seo.Notifier
	events  *service.EventService
}

// NewEngine creates a workflow engine. sitemap and events may be nil in
// tests; side effects degrade to no-ops.
func NewEngine(queries *store.Queries, sitemap *seo.Notifier, events *service.EventService) *Engine {
	return &Engine{queries: queries, sitemap: sitemap, events: events}
}

// Input holds the client-supplied fields of a content item. All values
// are untrusted and re-validated here regardless of client-side checks.
type Input struct {
	Title         string
	Slug          string // optional explicit override
	Body          string
	Category      string
	Tags          []string
	FeaturedImage string
}

func (in *Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Slug != "" && !util.IsValidSlug(in.Slug) {
		return fmt.Errorf("%w: slug must use lowercase letters, numbers, and hyphens", ErrValidation)
	}
	return nil
}

// Create makes a new content item in draft status for the actor.
func (e *Engine) Create(ctx context.Context, actor *model.User, kind model.ContentKind, in Input) (model.ContentItem, error) {
	if !kind.Valid() {
		return model.ContentItem{}, fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}
	if d := rbac.Authorize(actor, permission(kind, "create"), 0); !d.Allowed {
		return model.ContentItem{}, d.Err()
	}
	if err := in.validate(); err != nil {
		return model.ContentItem{}, err
	}

	bodyHTML, err := content.RenderHTML(in.Body)
	if err != nil {
		return model.ContentItem{}, err
	}

	slug, err := e.resolveSlug(ctx, kind, in)
	if err != nil {
		return model.ContentItem{}, err
	}

	params := store.CreateContentParams{
		Kind:          kind,
		Title:         strings.TrimSpace(in.Title),
		Slug:          slug,
		Body:          in.Body,
		BodyHTML:      bodyHTML,
		Excerpt:       content.Excerpt(in.Body, excerptLength),
		Category:      in.Category,
		Tags:          model.TagsToJSON(in.Tags),
		FeaturedImage: nullString(in.FeaturedImage),
		AuthorID:      actor.ID,
	}

	item, err := e.queries.CreateContent(ctx, params)
	if store.IsUniqueViolation(err) {
		// Lost a create race despite the pre-check; retry once with a
		// fresh suffix. The unique index is the final arbiter.
		params.Slug = util.SuffixSlug(slug)
		item, err = e.queries.CreateContent(ctx, params)
		if store.IsUniqueViolation(err) {
			return model.ContentItem{}, ErrSlugConflict
		}
	}
	if err != nil {
		return model.ContentItem{}, err
	}

	e.logWorkflow(ctx, actor, "content created", item, nil)
	return item, nil
}

// Update edits a content item's fields. A title change without an
// explicit slug re-runs slug resolution; this is independent of status.
func (e *Engine) Update(ctx context.Context, actor *model.User, kind model.ContentKind, id int64, in Input) (model.ContentItem, error) {
	item, err := e.get(ctx, kind, id)
	if err != nil {
		return model.ContentItem{}, err
	}
	if d := rbac.Authorize(actor, permission(kind, "edit"), item.AuthorID); !d.Allowed {
		return model.ContentItem{}, d.Err()
	}
	if err := in.validate(); err != nil {
		return model.ContentItem{}, err
	}

	slug := item.Slug
	switch {
	case in.Slug != "" && in.Slug != item.Slug:
		slug, err = e.resolveSlug(ctx, kind, in)
	case in.Slug == "" && strings.TrimSpace(in.Title) != item.Title:
		regenerated := util.Slugify(in.Title)
		if regenerated != item.Slug {
			slug, err = e.resolveSlug(ctx, kind, Input{Title: in.Title})
		}
	}
	if err != nil {
		return model.ContentItem{}, err
	}

	bodyHTML, err := content.RenderHTML(in.Body)
	if err != nil {
		return model.ContentItem{}, err
	}

	err = e.queries.UpdateContent(ctx, store.UpdateContentParams{
		ID:            item.ID,
		Kind:          kind,
		Title:         strings.TrimSpace(in.Title),
		Slug:          slug,
		Body:          in.Body,
		BodyHTML:      bodyHTML,
		Excerpt:       content.Excerpt(in.Body, excerptLength),
		Category:      in.Category,
		Tags:          model.TagsToJSON(in.Tags),
		FeaturedImage: nullString(in.FeaturedImage),
	})
	if store.IsUniqueViolation(err) {
		return model.ContentItem{}, ErrSlugConflict
	}
	if err != nil {
		return model.ContentItem{}, err
	}

	updated, err := e.get(ctx, kind, id)
	if err != nil {
		return model.ContentItem{}, err
	}
	if updated.IsPublished() {
		e.notify(seo.ActionUpdate, updated)
	}
	return updated, nil
}

// Delete permanently removes a content item.
func (e *Engine) Delete(ctx context.Context, actor *model.User, kind model.ContentKind, id int64) error {
	item, err := e.get(ctx, kind, id)
	if err != nil {
		return err
	}
	if d := rbac.Authorize(actor, permission(kind, "delete"), item.AuthorID); !d.Allowed {
		return d.Err()
	}

	if err := e.queries.DeleteContent(ctx, kind, id); err != nil {
		return err
	}

	if item.IsPublished() {
		e.notify(seo.ActionDelete, item)
	}
	e.logWorkflow(ctx, actor, "content deleted", item, nil)
	return nil
}

// Transition moves a content item to a new workflow status.
//
// The transition is validated against the kind's table before storage is
// touched; authorization (including the ownership rule for non-admin
// actors) is checked before legality so a non-owner learns nothing about
// the item's state. The status write is conditional on the status the
// item was read at: a concurrent transition that commits first makes
// this one fail with ErrConflict, never a silent merge.
//
// Requesting the status the item already has is a no-op that returns the
// item unchanged; in particular it never touches published_at. The no-op
// answer carries the item, so it runs the same access check as an
// invalid transition before anything is revealed.
func (e *Engine) Transition(ctx context.Context, actor *model.User, kind model.ContentKind, id int64, to model.Status) (model.ContentItem, error) {
	item, err := e.get(ctx, kind, id)
	if err != nil {
		return model.ContentItem{}, err
	}

	// Ownership before legality for non-admin actors.
	if actor == nil || !actor.IsActive {
		return model.ContentItem{}, rbac.ErrUnauthenticated
	}

	if item.Status == to {
		if d := e.authorizeAny(actor, kind, item.AuthorID); !d.Allowed {
			return model.ContentItem{}, d.Err()
		}
		return item, nil
	}

	rule, legal := RuleFor(kind, item.Status, to)
	if !legal {
		// Legality is checked against the table only after the actor is
		// known; an unauthenticated caller never reaches this point.
		if d := e.authorizeAny(actor, kind, item.AuthorID); !d.Allowed {
			return model.ContentItem{}, d.Err()
		}
		return model.ContentItem{}, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, kind, item.Status, to)
	}

	if d := e.authorizeRule(actor, kind, rule, item.AuthorID); !d.Allowed {
		return model.ContentItem{}, d.Err()
	}

	params := store.UpdateContentStatusParams{
		ID:         item.ID,
		Kind:       kind,
		FromStatus: item.Status,
		Status:     to,
		// Review metadata carries over unless the rule changes it.
		ReviewedBy: item.ReviewedBy,
		ReviewedAt: item.ReviewedAt,
	}

	now := time.Now().UTC()
	if rule.SetReviewed {
		params.ReviewedBy = sql.NullInt64{Int64: actor.ID, Valid: true}
		params.ReviewedAt = sql.NullTime{Time: now, Valid: true}
	}
	if rule.ClearReview {
		params.ReviewedBy = sql.NullInt64{}
		params.ReviewedAt = sql.NullTime{}
	}
	if rule.SetPublished {
		// COALESCE in the store keeps an earlier published_at intact.
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}

	affected, err := e.queries.UpdateContentStatus(ctx, params)
	if err != nil {
		return model.ContentItem{}, err
	}
	if affected == 0 {
		return model.ContentItem{}, ErrConflict
	}

	updated, err := e.get(ctx, kind, id)
	if err != nil {
		return model.ContentItem{}, err
	}

	if rule.SitemapUpdate {
		e.notify(seo.ActionUpdate, updated)
	}
	if rule.SitemapDelete && item.IsPublished() {
		e.notify(seo.ActionDelete, updated)
	}

	e.logWorkflow(ctx, actor, "status changed", updated, map[string]any{
		"from": string(item.Status),
		"to":   string(to),
	})
	return updated, nil
}

// RecordView bumps the public view counter. Not an admin operation; no
// authorization applies.
func (e *Engine) RecordView(ctx context.Context, kind model.ContentKind, id int64) error {
	return e.queries.IncrementViewCount(ctx, kind, id)
}

// Get fetches a content item, mapping missing rows to ErrNotFound.
func (e *Engine) Get(ctx context.Context, kind model.ContentKind, id int64) (model.ContentItem, error) {
	return e.get(ctx, kind, id)
}

func (e *Engine) get(ctx context.Context, kind model.ContentKind, id int64) (model.ContentItem, error) {
	item, err := e.queries.GetContent(ctx, kind, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentItem{}, ErrNotFound
	}
	if err != nil {
		return model.ContentItem{}, err
	}
	return item, nil
}

// authorizeRule evaluates the gate for one transition rule.
func (e *Engine) authorizeRule(actor *model.User, kind model.ContentKind, rule Rule, authorID int64) rbac.Decision {
	switch {
	case rule.AuthorOrModerator:
		return rbac.AuthorizeSelf(actor, moderationPermission(kind), authorID)
	case rule.Action == "":
		// Author self-action: moderation capability does not stand in
		// for ownership.
		if actor.ID == authorID || actor.IsAdminTier() {
			return rbac.Allow
		}
		return rbac.Deny(rbac.DenyNotOwner)
	}
	if rule.ModeratorTier && actor.IsModeratorTier() {
		return rbac.Allow
	}
	if rule.AdminTierOnly && !actor.IsAdminTier() {
		return rbac.Deny(rbac.DenyInsufficientPermission)
	}
	return rbac.Authorize(actor, permission(kind, rule.Action), authorID)
}

// authorizeAny checks that the actor may interact with the item at all,
// used before reporting an invalid transition so the error does not leak
// state to actors who could not have acted anyway.
func (e *Engine) authorizeAny(actor *model.User, kind model.ContentKind, authorID int64) rbac.Decision {
	return rbac.AuthorizeSelf(actor, moderationPermission(kind), authorID)
}

// resolveSlug derives a unique slug from the input, preferring an
// explicit override, suffixing on collision.
func (e *Engine) resolveSlug(ctx context.Context, kind model.ContentKind, in Input) (string, error) {
	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Title)
	}
	if slug == "" {
		return "", fmt.Errorf("%w: title produces an empty slug", ErrValidation)
	}

	exists, err := e.queries.SlugExists(ctx, kind, slug)
	if err != nil {
		return "", err
	}
	if exists {
		slug = util.SuffixSlug(slug)
	}
	return slug, nil
}

func (e *Engine) notify(action seo.Action, item model.ContentItem) {
	if e.sitemap == nil {
		return
	}
	e.sitemap.Notify(action, item.Kind, item.Slug)
}

func (e *Engine) logWorkflow(ctx context.Context, actor *model.User, message string, item model.ContentItem, extra map[string]any) {
	slog.Info(message,
		"kind", string(item.Kind),
		"id", item.ID,
		"slug", item.Slug,
		"actor_id", actor.ID,
	)
	if e.events == nil {
		return
	}
	metadata := map[string]any{
		"kind": string(item.Kind),
		"id":   item.ID,
		"slug": item.Slug,
	}
	for k, v := range extra {
		metadata[k] = v
	}
	actorID := actor.ID
	e.events.LogWorkflowEvent(ctx, model.EventLevelInfo, message, &actorID, metadata)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
