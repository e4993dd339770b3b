// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package workflow

import "errors"

// Workflow errors. All are recoverable-by-caller; the handler boundary
// translates them to HTTP status codes. Authorization denials reuse the
// rbac sentinels.
var (
	// ErrNotFound means the content item does not exist.
	ErrNotFound = errors.New("content not found")

	// ErrInvalidTransition means the requested status change is not
	// reachable from the item's current status for its kind.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSlugConflict means slug uniqueness could not be resolved even
	// after retrying with a suffix.
	ErrSlugConflict = errors.New("slug conflict")

	// ErrConflict means a concurrent mutation won the optimistic
	// concurrency check; the caller should re-read and retry.
	ErrConflict = errors.New("concurrent modification")

	// ErrValidation means the input failed server-side validation.
	ErrValidation = errors.New("invalid input")
)
