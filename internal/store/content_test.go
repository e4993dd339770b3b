// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/testutil"
)

func TestCreateContentStartsDraft(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author@test.local", model.RoleEditor)
	item := testutil.CreateContent(t, db, model.KindPost, "Başlık", "baslik", author.ID)

	if item.Status != model.StatusDraft {
		t.Errorf("status = %s, want draft", item.Status)
	}
	if item.PublishedAt.Valid || item.ReviewedAt.Valid {
		t.Error("new item must carry no review or publish metadata")
	}

	got, err := store.New(db).GetContentBySlug(ctx, model.KindPost, "baslik")
	if err != nil {
		t.Fatalf("GetContentBySlug: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("lookup id = %d, want %d", got.ID, item.ID)
	}
}

func TestSlugUniquePerKind(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	author := testutil.CreateUser(t, db, "author@test.local", model.RoleEditor)
	testutil.CreateContent(t, db, model.KindPost, "A", "ortak", author.ID)

	// Same slug in the same kind violates the unique index.
	_, err := queries.CreateContent(ctx, store.CreateContentParams{
		Kind: model.KindPost, Title: "B", Slug: "ortak", AuthorID: author.ID,
	})
	if !store.IsUniqueViolation(err) {
		t.Errorf("duplicate slug err = %v, want unique violation", err)
	}

	// Same slug in another kind is allowed.
	_, err = queries.CreateContent(ctx, store.CreateContentParams{
		Kind: model.KindPage, Title: "C", Slug: "ortak", AuthorID: author.ID,
	})
	if err != nil {
		t.Errorf("cross-kind slug err = %v", err)
	}
}

func TestUpdateContentStatusCAS(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	author := testutil.CreateUser(t, db, "author@test.local", model.RoleEditor)
	item := testutil.CreateContent(t, db, model.KindPost, "CAS", "cas", author.ID)

	now := time.Now().UTC()

	// Matching current status writes one row.
	affected, err := queries.UpdateContentStatus(ctx, store.UpdateContentStatusParams{
		ID: item.ID, Kind: model.KindPost,
		FromStatus: model.StatusDraft, Status: model.StatusPublished,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
	})
	if err != nil {
		t.Fatalf("UpdateContentStatus: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	// A stale expected status writes nothing.
	affected, err = queries.UpdateContentStatus(ctx, store.UpdateContentStatusParams{
		ID: item.ID, Kind: model.KindPost,
		FromStatus: model.StatusDraft, Status: model.StatusArchived,
	})
	if err != nil {
		t.Fatalf("UpdateContentStatus: %v", err)
	}
	if affected != 0 {
		t.Errorf("stale CAS affected = %d, want 0", affected)
	}

	got, err := queries.GetContent(ctx, model.KindPost, item.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if got.Status != model.StatusPublished {
		t.Errorf("status = %s, want published", got.Status)
	}
}

func TestUpdateContentStatusKeepsEarlierPublishedAt(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	author := testutil.CreateUser(t, db, "author@test.local", model.RoleEditor)
	item := testutil.CreateContent(t, db, model.KindPost, "Tarih", "tarih", author.ID)

	first := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if _, err := queries.UpdateContentStatus(ctx, store.UpdateContentStatusParams{
		ID: item.ID, Kind: model.KindPost,
		FromStatus: model.StatusDraft, Status: model.StatusPublished,
		PublishedAt: sql.NullTime{Time: first, Valid: true},
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Later writes pass a new timestamp, COALESCE ignores it.
	if _, err := queries.UpdateContentStatus(ctx, store.UpdateContentStatusParams{
		ID: item.ID, Kind: model.KindPost,
		FromStatus: model.StatusPublished, Status: model.StatusDraft,
	}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if _, err := queries.UpdateContentStatus(ctx, store.UpdateContentStatusParams{
		ID: item.ID, Kind: model.KindPost,
		FromStatus: model.StatusDraft, Status: model.StatusPublished,
		PublishedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}); err != nil {
		t.Fatalf("republish: %v", err)
	}

	got, err := queries.GetContent(ctx, model.KindPost, item.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if !got.PublishedAt.Valid || !got.PublishedAt.Time.Equal(first) {
		t.Errorf("published_at = %v, want %v", got.PublishedAt.Time, first)
	}
}

func TestListContentStatusFilter(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	author := testutil.CreateUser(t, db, "author@test.local", model.RoleEditor)
	a := testutil.CreateContent(t, db, model.KindPost, "A", "a", author.ID)
	testutil.CreateContent(t, db, model.KindPost, "B", "b", author.ID)
	testutil.CreateContent(t, db, model.KindPage, "C", "c", author.ID)

	if _, err := queries.UpdateContentStatus(ctx, store.UpdateContentStatusParams{
		ID: a.ID, Kind: model.KindPost,
		FromStatus: model.StatusDraft, Status: model.StatusPublished,
		PublishedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	all, err := queries.ListContent(ctx, store.ListContentParams{Kind: model.KindPost, Limit: -1})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all posts = %d, want 2", len(all))
	}

	published, err := queries.ListPublishedContent(ctx, model.KindPost)
	if err != nil {
		t.Fatalf("ListPublishedContent: %v", err)
	}
	if len(published) != 1 || published[0].ID != a.ID {
		t.Errorf("published = %v", published)
	}

	count, err := queries.CountContent(ctx, model.KindPost, model.StatusDraft)
	if err != nil {
		t.Fatalf("CountContent: %v", err)
	}
	if count != 1 {
		t.Errorf("draft count = %d, want 1", count)
	}
}

func TestIncrementViewCount(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	author := testutil.CreateUser(t, db, "author@test.local", model.RoleEditor)
	item := testutil.CreateContent(t, db, model.KindVoice, "V", "v", author.ID)

	if err := queries.IncrementViewCount(ctx, model.KindVoice, item.ID); err != nil {
		t.Fatalf("IncrementViewCount: %v", err)
	}
	if err := queries.IncrementViewCount(ctx, model.KindVoice, item.ID); err != nil {
		t.Fatalf("IncrementViewCount: %v", err)
	}

	got, err := queries.GetContent(ctx, model.KindVoice, item.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if got.ViewCount != 2 {
		t.Errorf("view_count = %d, want 2", got.ViewCount)
	}
}
