// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iklimsesi/iklimsesi-go/internal/middleware"
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/workflow"
)

// kindsByPath maps URL collection segments onto content kinds.
var kindsByPath = map[string]model.ContentKind{
	"posts":  model.KindPost,
	"voices": model.KindVoice,
	"pages":  model.KindPage,
}

// ContentHandler serves the content collections: blog posts, voices, and
// pages. All mutations go through the workflow engine.
type ContentHandler struct {
	engine  *workflow.Engine
	queries *store.Queries
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(engine *workflow.Engine, queries *store.Queries) *ContentHandler {
	return &ContentHandler{engine: engine, queries: queries}
}

func contentKind(r *http.Request) (model.ContentKind, bool) {
	kind, ok := kindsByPath[chi.URLParam(r, "collection")]
	return kind, ok
}

func contentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// viewPermission is the read capability for a kind.
func viewPermission(kind model.ContentKind) rbac.Permission {
	return rbac.Permission(kind.Resource() + ".view")
}

type contentRequest struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug,omitempty"`
	Body          string   `json:"body"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	FeaturedImage string   `json:"featured_image,omitempty"`
}

func (req contentRequest) input() workflow.Input {
	return workflow.Input{
		Title:         req.Title,
		Slug:          req.Slug,
		Body:          req.Body,
		Category:      req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
	}
}

// contentResponse shapes a content item for API responses, exposing tags
// as a list.
func contentResponse(item model.ContentItem) map[string]any {
	return map[string]any{
		"item": item,
		"tags": item.TagList(),
	}
}

// List handles GET /content/{collection}.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}

	if d := rbac.Authorize(middleware.GetUser(r), viewPermission(kind), 0); !d.Allowed {
		WriteError(w, d.Err())
		return
	}

	status := model.Status(r.URL.Query().Get("status"))
	limit, offset := pagination(r, 20)

	items, err := h.queries.ListContent(r.Context(), store.ListContentParams{
		Kind:   kind,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	total, err := h.queries.CountContent(r.Context(), kind, status)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// Get handles GET /content/{collection}/{id}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	id, err := contentID(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid ID")
		return
	}

	if d := rbac.Authorize(middleware.GetUser(r), viewPermission(kind), 0); !d.Allowed {
		WriteError(w, d.Err())
		return
	}

	item, err := h.engine.Get(r.Context(), kind, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, contentResponse(item))
}

// Create handles POST /content/{collection}. New items always start as
// drafts; publication is a separate transition.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}

	var req contentRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	item, err := h.engine.Create(r.Context(), middleware.GetUser(r), kind, req.input())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, contentResponse(item))
}

// Update handles PUT /content/{collection}/{id}.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	id, err := contentID(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid ID")
		return
	}

	var req contentRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	item, err := h.engine.Update(r.Context(), middleware.GetUser(r), kind, id, req.input())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, contentResponse(item))
}

// Delete handles DELETE /content/{collection}/{id}.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	id, err := contentID(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid ID")
		return
	}

	if err := h.engine.Delete(r.Context(), middleware.GetUser(r), kind, id); err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition handles POST /content/{collection}/{id}/transition, moving
// an item through the publication workflow.
func (h *ContentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	id, err := contentID(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid ID")
		return
	}

	var req transitionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if req.Status == "" {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Status is required")
		return
	}

	item, err := h.engine.Transition(r.Context(), middleware.GetUser(r), kind, id, model.Status(req.Status))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, contentResponse(item))
}

// RecordView handles POST /content/{collection}/{id}/view. Public
// endpoint: view counting carries no authorization.
func (h *ContentHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	id, err := contentID(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid ID")
		return
	}

	if err := h.engine.RecordView(r.Context(), kind, id); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
