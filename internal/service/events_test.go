// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/testutil"
)

func TestLogEvent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	events := service.NewEventService(db)
	user := testutil.CreateUser(t, db, "svc@iklimsesi.org", model.RoleAdmin)

	events.LogAuthEvent(ctx, model.EventLevelInfo, "user logged in", &user.ID, "127.0.0.1",
		map[string]any{"email": user.Email})
	events.LogWorkflowEvent(ctx, model.EventLevelInfo, "content published", &user.ID, nil)
	events.LogInfo(ctx, model.EventCategorySystem, "startup", nil, "", nil)

	got, err := store.New(db).ListEvents(ctx, store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("events = %d, want 3", len(got))
	}

	byMessage := make(map[string]model.Event, len(got))
	for _, e := range got {
		byMessage[e.Message] = e
	}

	login := byMessage["user logged in"]
	if login.Category != model.EventCategoryAuth || login.IPAddress != "127.0.0.1" {
		t.Errorf("login event = %+v", login)
	}
	if !login.UserID.Valid || login.UserID.Int64 != user.ID {
		t.Errorf("login user = %+v", login.UserID)
	}
	if !strings.Contains(login.Metadata, user.Email) {
		t.Errorf("metadata = %s", login.Metadata)
	}

	if byMessage["content published"].Category != model.EventCategoryWorkflow {
		t.Errorf("workflow event = %+v", byMessage["content published"])
	}

	startup := byMessage["startup"]
	if startup.UserID.Valid {
		t.Error("system event should have no user")
	}
	if startup.Metadata != "{}" {
		t.Errorf("nil metadata stored as %s", startup.Metadata)
	}
}

func TestDeleteOldEventsByAge(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)
	events := service.NewEventService(db)

	if _, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level: "INFO", Category: "system", Message: "old", Metadata: "{}",
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	events.LogInfo(ctx, model.EventCategorySystem, "new", nil, "", nil)

	if err := events.DeleteOldEvents(ctx, 24*time.Hour); err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}

	got, err := queries.ListEvents(ctx, store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(got) != 1 || got[0].Message != "new" {
		t.Errorf("events after cleanup = %+v", got)
	}
}
