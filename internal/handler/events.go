// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// EventHandler serves the audit event log.
type EventHandler struct {
	queries *store.Queries
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(queries *store.Queries) *EventHandler {
	return &EventHandler{queries: queries}
}

// List handles GET /events, newest first.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
