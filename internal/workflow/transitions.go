// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workflow implements the content publication state machine:
// per-kind transition tables, the engine that applies them under
// permission, ownership, and concurrency checks, and the error taxonomy.
package workflow

import (
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
)

// Transition is one (from, to) status pair.
type Transition struct {
	From model.Status
	To   model.Status
}

// Rule describes who may trigger a transition and what it does to the
// entity beyond the status change.
type Rule struct {
	// Action names the permission action guarding the transition,
	// combined with the kind's resource ("publish" on a post needs
	// blog.publish). Empty means an author self-action: only the author
	// (or an admin-tier actor) may trigger it, and no moderation
	// capability substitutes for ownership.
	Action string

	// AdminTierOnly restricts the transition to admin and super_admin.
	AdminTierOnly bool

	// ModeratorTier additionally admits moderator-tier and higher
	// actors even when the guarding permission was revoked from their
	// stored set.
	ModeratorTier bool

	// AuthorOrModerator allows the item's author as well as anyone with
	// the kind's moderation capability.
	AuthorOrModerator bool

	// Side effects applied atomically with the status change.
	SetPublished bool // set published_at if unset
	SetReviewed  bool // set reviewed_by / reviewed_at to the actor
	ClearReview  bool // clear prior review / rejection metadata

	// Sitemap notifications fired after the change commits.
	SitemapUpdate bool
	SitemapDelete bool // only meaningful when the item was published
}

// postPageTransitions is the table for blog posts and pages.
var postPageTransitions = map[Transition]Rule{
	{model.StatusDraft, model.StatusPublished}:    {Action: "publish", SetPublished: true, SitemapUpdate: true},
	{model.StatusPublished, model.StatusDraft}:    {Action: "edit", AdminTierOnly: true, SitemapDelete: true},
	{model.StatusPublished, model.StatusArchived}: {Action: "edit", SitemapDelete: true},
	{model.StatusArchived, model.StatusDraft}:     {Action: "edit"},
	{model.StatusDraft, model.StatusArchived}:     {Action: "edit"},
}

// voiceTransitions is the table for voices (user-submitted stories).
var voiceTransitions = map[Transition]Rule{
	{model.StatusDraft, model.StatusSubmitted}:     {},
	{model.StatusSubmitted, model.StatusReviewed}:  {Action: "edit", ModeratorTier: true, SetReviewed: true},
	{model.StatusSubmitted, model.StatusPublished}: {Action: "publish", SetPublished: true, SetReviewed: true, SitemapUpdate: true},
	{model.StatusReviewed, model.StatusPublished}:  {Action: "publish", SetPublished: true, SetReviewed: true, SitemapUpdate: true},
	{model.StatusSubmitted, model.StatusRejected}:  {Action: "edit", SetReviewed: true},
	{model.StatusReviewed, model.StatusRejected}:   {Action: "edit", SetReviewed: true},
	{model.StatusPublished, model.StatusArchived}:  {Action: "edit", SitemapDelete: true},
	{model.StatusRejected, model.StatusArchived}:   {Action: "edit"},
	{model.StatusRejected, model.StatusSubmitted}:  {AuthorOrModerator: true, ClearReview: true},
}

// table returns the transition table for a kind.
func table(kind model.ContentKind) map[Transition]Rule {
	if kind == model.KindVoice {
		return voiceTransitions
	}
	return postPageTransitions
}

// RuleFor looks up the rule for a transition. The second return value is
// false when the transition is not legal for the kind.
func RuleFor(kind model.ContentKind, from, to model.Status) (Rule, bool) {
	r, ok := table(kind)[Transition{From: from, To: to}]
	return r, ok
}

// CanTransition reports whether (from, to) is in the kind's table.
func CanTransition(kind model.ContentKind, from, to model.Status) bool {
	_, ok := RuleFor(kind, from, to)
	return ok
}

// TargetStates returns the statuses reachable from a given state.
func TargetStates(kind model.ContentKind, from model.Status) []model.Status {
	var targets []model.Status
	for t := range table(kind) {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	return targets
}

// permission builds the rbac permission guarding an action on a kind.
func permission(kind model.ContentKind, action string) rbac.Permission {
	return rbac.Permission(kind.Resource() + "." + action)
}

// moderationPermission is the capability that lets a non-author act on
// someone else's item for author-or-moderator transitions.
func moderationPermission(kind model.ContentKind) rbac.Permission {
	if kind == model.KindVoice {
		return rbac.VoicesEdit
	}
	return permission(kind, "publish")
}
