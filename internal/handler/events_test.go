// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/testutil"
)

func TestEventsList(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	events := service.NewEventService(db)
	admin := testutil.CreateUser(t, db, "audit@iklimsesi.org", model.RoleAdmin)
	for i := 0; i < 3; i++ {
		events.LogAuthEvent(ctx, model.EventLevelInfo, "user logged in", &admin.ID, "127.0.0.1", nil)
	}

	h := NewEventHandler(store.New(db))

	rec := httptest.NewRecorder()
	h.List(rec, apiRequest(http.MethodGet, "/events?limit=2", "", &admin, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Events []model.Event `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Errorf("events = %d, want limit of 2 applied", len(resp.Events))
	}
}

func TestHealthCheck(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	h := NewHealthHandler(db)

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	// A closed pool is unhealthy.
	cleanup()
	rec = httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status after close = %d, want 503", rec.Code)
	}
}
