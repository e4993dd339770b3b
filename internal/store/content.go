// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

const contentColumns = `id, kind, title, slug, body, body_html, excerpt,
	category, tags, featured_image, status, author_id, reviewed_by,
	reviewed_at, published_at, view_count, created_at, updated_at`

func scanContent(row interface{ Scan(...any) error }) (model.ContentItem, error) {
	var c model.ContentItem
	err := row.Scan(&c.ID, &c.Kind, &c.Title, &c.Slug, &c.Body, &c.BodyHTML,
		&c.Excerpt, &c.Category, &c.Tags, &c.FeaturedImage, &c.Status,
		&c.AuthorID, &c.ReviewedBy, &c.ReviewedAt, &c.PublishedAt,
		&c.ViewCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.ContentItem{}, err
	}
	return c, nil
}

// CreateContentParams holds the fields for creating a content item.
// New items always start in draft.
type CreateContentParams struct {
	Kind          model.ContentKind
	Title         string
	Slug          string
	Body          string
	BodyHTML      string
	Excerpt       string
	Category      string
	Tags          string
	FeaturedImage sql.NullString
	AuthorID      int64
}

// CreateContent inserts a new content item in draft status.
// A unique-constraint failure on (kind, slug) surfaces unchanged so the
// caller can retry with a suffixed slug; see IsUniqueViolation.
func (q *Queries) CreateContent(ctx context.Context, p CreateContentParams) (model.ContentItem, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO content (kind, title, slug, body, body_html, excerpt,
			category, tags, featured_image, status, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Kind), p.Title, p.Slug, p.Body, p.BodyHTML, p.Excerpt,
		p.Category, p.Tags, p.FeaturedImage, string(model.StatusDraft),
		p.AuthorID, now, now)
	if err != nil {
		return model.ContentItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ContentItem{}, err
	}
	return q.GetContent(ctx, p.Kind, id)
}

// GetContent fetches one content item by kind and id.
func (q *Queries) GetContent(ctx context.Context, kind model.ContentKind, id int64) (model.ContentItem, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content WHERE kind = ? AND id = ?`,
		string(kind), id)
	return scanContent(row)
}

// GetContentBySlug fetches one content item by kind and slug.
func (q *Queries) GetContentBySlug(ctx context.Context, kind model.ContentKind, slug string) (model.ContentItem, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content WHERE kind = ? AND slug = ?`,
		string(kind), slug)
	return scanContent(row)
}

// SlugExists reports whether a slug is already taken within a collection.
// Best-effort pre-check only; the unique index decides races.
func (q *Queries) SlugExists(ctx context.Context, kind model.ContentKind, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content WHERE kind = ? AND slug = ?`,
		string(kind), slug).Scan(&n)
	return n > 0, err
}

// ListContentParams controls content list filtering and pagination.
type ListContentParams struct {
	Kind   model.ContentKind
	Status model.Status // empty = all statuses
	Limit  int64
	Offset int64
}

// ListContent returns content items of one kind, newest first.
func (q *Queries) ListContent(ctx context.Context, p ListContentParams) ([]model.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE kind = ?`
	args := []any{string(p.Kind)}
	if p.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(p.Status))
	}
	query += ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, p.Limit, p.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ContentItem
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// CountContent returns the number of items of one kind, optionally
// filtered by status.
func (q *Queries) CountContent(ctx context.Context, kind model.ContentKind, status model.Status) (int64, error) {
	var n int64
	var err error
	if status == "" {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM content WHERE kind = ?`, string(kind)).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM content WHERE kind = ? AND status = ?`,
			string(kind), string(status)).Scan(&n)
	}
	return n, err
}

// ListPublishedContent returns every published item of a kind, for
// sitemap building.
func (q *Queries) ListPublishedContent(ctx context.Context, kind model.ContentKind) ([]model.ContentItem, error) {
	return q.ListContent(ctx, ListContentParams{
		Kind:   kind,
		Status: model.StatusPublished,
		Limit:  -1,
		Offset: 0,
	})
}

// UpdateContentParams holds the editable fields of a content item.
type UpdateContentParams struct {
	ID            int64
	Kind          model.ContentKind
	Title         string
	Slug          string
	Body          string
	BodyHTML      string
	Excerpt       string
	Category      string
	Tags          string
	FeaturedImage sql.NullString
}

// UpdateContent updates an item's editable fields. Status is never
// touched here; transitions go through UpdateContentStatus.
func (q *Queries) UpdateContent(ctx context.Context, p UpdateContentParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE content SET title = ?, slug = ?, body = ?, body_html = ?,
			excerpt = ?, category = ?, tags = ?, featured_image = ?, updated_at = ?
		WHERE kind = ? AND id = ?`,
		p.Title, p.Slug, p.Body, p.BodyHTML, p.Excerpt, p.Category, p.Tags,
		p.FeaturedImage, time.Now().UTC(), string(p.Kind), p.ID)
	return err
}

// UpdateContentStatusParams is a conditional status update: the row is
// only written when its current status still equals FromStatus.
type UpdateContentStatusParams struct {
	ID          int64
	Kind        model.ContentKind
	FromStatus  model.Status
	Status      model.Status
	ReviewedBy  sql.NullInt64
	ReviewedAt  sql.NullTime
	PublishedAt sql.NullTime
}

// UpdateContentStatus applies a workflow transition with an optimistic
// concurrency check on the current status. Returns the number of rows
// written: zero means a concurrent transition won the race.
// published_at is written through COALESCE so it is set at most once.
func (q *Queries) UpdateContentStatus(ctx context.Context, p UpdateContentStatusParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE content SET status = ?,
			reviewed_by = ?,
			reviewed_at = ?,
			published_at = COALESCE(published_at, ?),
			updated_at = ?
		WHERE kind = ? AND id = ? AND status = ?`,
		string(p.Status), p.ReviewedBy, p.ReviewedAt, p.PublishedAt,
		time.Now().UTC(), string(p.Kind), p.ID, string(p.FromStatus))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IncrementViewCount bumps the monotonic view counter.
func (q *Queries) IncrementViewCount(ctx context.Context, kind model.ContentKind, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE content SET view_count = view_count + 1 WHERE kind = ? AND id = ?`,
		string(kind), id)
	return err
}

// DeleteContent permanently removes a content item.
func (q *Queries) DeleteContent(ctx context.Context, kind model.ContentKind, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM content WHERE kind = ? AND id = ?`, string(kind), id)
	return err
}
