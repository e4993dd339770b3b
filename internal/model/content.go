// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ContentKind identifies one of the three content collections.
type ContentKind string

// Content kinds.
const (
	KindPost  ContentKind = "post"
	KindVoice ContentKind = "voice"
	KindPage  ContentKind = "page"
)

// ValidKinds contains all content kinds.
var ValidKinds = []ContentKind{KindPost, KindVoice, KindPage}

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	switch k {
	case KindPost, KindVoice, KindPage:
		return true
	}
	return false
}

// Resource returns the permission namespace for the kind, e.g. "blog"
// for posts. Permission strings are namespaced resource.action.
func (k ContentKind) Resource() string {
	switch k {
	case KindPost:
		return "blog"
	case KindVoice:
		return "voices"
	case KindPage:
		return "pages"
	default:
		return ""
	}
}

// Status is a content publication workflow state.
type Status string

// Workflow states. Posts and pages use draft/published/archived;
// voices additionally pass through submitted/reviewed/rejected.
const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
	StatusArchived  Status = "archived"
)

// ContentItem represents one entry in a content collection: a blog post,
// a voice (user-submitted story), or a static page.
type ContentItem struct {
	ID            int64          `json:"id"`
	Kind          ContentKind    `json:"kind"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Body          string         `json:"body"` // markdown source
	BodyHTML      string         `json:"body_html"`
	Excerpt       string         `json:"excerpt"`
	Category      string         `json:"category"`
	Tags          string         `json:"-"` // JSON array stored as string
	FeaturedImage sql.NullString `json:"featured_image,omitempty"`
	Status        Status         `json:"status"`
	AuthorID      int64          `json:"author_id"`
	ReviewedBy    sql.NullInt64  `json:"reviewed_by,omitempty"`
	ReviewedAt    sql.NullTime   `json:"reviewed_at,omitempty"`
	PublishedAt   sql.NullTime   `json:"published_at,omitempty"`
	ViewCount     int64          `json:"view_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsPublished returns true if the item is publicly visible.
func (c *ContentItem) IsPublished() bool {
	return c.Status == StatusPublished
}

// TagList parses the JSON tags string into a slice.
func (c *ContentItem) TagList() []string {
	var tags []string
	if c.Tags == "" || c.Tags == "[]" {
		return tags
	}
	_ = json.Unmarshal([]byte(c.Tags), &tags)
	return tags
}

// TagsToJSON converts a slice of tags to a JSON string.
func TagsToJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(tags)
	return string(data)
}
