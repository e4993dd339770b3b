// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers for the admin API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iklimsesi/iklimsesi-go/internal/middleware"
	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/workflow"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

// WriteError translates domain errors into HTTP error responses. Denials
// stay generic: the response never names the missing permission.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Please sign in")
	case errors.Is(err, rbac.ErrNotOwner):
		middleware.WriteAPIError(w, http.StatusForbidden, "forbidden", "Not allowed")
	case errors.Is(err, rbac.ErrInsufficientPermission):
		middleware.WriteAPIError(w, http.StatusForbidden, "forbidden", "Not allowed")
	case errors.Is(err, workflow.ErrNotFound):
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found")
	case errors.Is(err, workflow.ErrInvalidTransition):
		middleware.WriteAPIError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, workflow.ErrSlugConflict):
		middleware.WriteAPIError(w, http.StatusConflict, "slug_conflict", "Slug is already in use")
	case errors.Is(err, workflow.ErrConflict):
		middleware.WriteAPIError(w, http.StatusConflict, "conflict", "The item was modified concurrently; reload and retry")
	case errors.Is(err, workflow.ErrValidation):
		middleware.WriteAPIError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		slog.Error("internal error", "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// DecodeJSON decodes a request body into v, enforcing a size limit and
// rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
