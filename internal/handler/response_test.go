// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iklimsesi/iklimsesi-go/internal/rbac"
	"github.com/iklimsesi/iklimsesi-go/internal/workflow"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"unauthenticated", rbac.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"not owner", rbac.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{"insufficient permission", rbac.ErrInsufficientPermission, http.StatusForbidden, "forbidden"},
		{"not found", workflow.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invalid transition", workflow.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"slug conflict", workflow.ErrSlugConflict, http.StatusConflict, "slug_conflict"},
		{"concurrent conflict", workflow.ErrConflict, http.StatusConflict, "conflict"},
		{"validation", workflow.ErrValidation, http.StatusBadRequest, "validation_failed"},
		{"wrapped sentinel", fmt.Errorf("creating post: %w", workflow.ErrSlugConflict), http.StatusConflict, "slug_conflict"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestWriteErrorNeverNamesPermissions(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, rbac.ErrInsufficientPermission)

	if strings.Contains(rec.Body.String(), "permission") {
		t.Errorf("denial leaked detail: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("sqlite: disk I/O error at /var/db"))
	if strings.Contains(rec.Body.String(), "sqlite") {
		t.Errorf("internal error leaked detail: %s", rec.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"draft","hack":"x"}`))
	var body transitionRequest
	if err := DecodeJSON(httptest.NewRecorder(), req, &body); err == nil {
		t.Error("unknown field should fail decoding")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"draft"}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &body); err != nil {
		t.Errorf("valid body: %v", err)
	}
	if body.Status != "draft" {
		t.Errorf("status = %q", body.Status)
	}
}
