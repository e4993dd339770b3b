// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package rbac

import (
	"errors"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

// Authorization errors. These are recoverable-by-caller denials, never
// fatal; the handler boundary translates them to HTTP status codes.
var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrNotOwner               = errors.New("not owner")
)

// DenyReason classifies why an authorization was denied.
type DenyReason string

// Deny reasons.
const (
	DenyUnauthenticated        DenyReason = "unauthenticated"
	DenyInsufficientPermission DenyReason = "insufficient_permission"
	DenyNotOwner               DenyReason = "not_owner"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny returns a negative decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Err maps the decision to its sentinel error, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyInsufficientPermission:
		return ErrInsufficientPermission
	case DenyNotOwner:
		return ErrNotOwner
	default:
		return ErrUnauthenticated
	}
}

// Authorize decides whether actor may perform an operation guarded by the
// required permission. ownerID carries the resource author for content
// operations; pass 0 when the resource has no ownership dimension.
//
// Authorize is stateless and side-effect-free: it only decides. An
// inactive or missing actor is unauthenticated; a resolved actor without
// the permission is denied without revealing which permission was
// missing. Ownership is checked before permission for non-admin actors
// touching someone else's resource, so the caller learns "not yours"
// rather than a hint about the permission set.
func Authorize(actor *model.User, required Permission, ownerID int64) Decision {
	if actor == nil || !actor.IsActive {
		return Deny(DenyUnauthenticated)
	}

	if ownerID != 0 && actor.ID != ownerID && !actor.IsAdminTier() {
		if !actor.HasPermission(string(required)) || !IsCrossAuthor(required) {
			return Deny(DenyNotOwner)
		}
	}

	if !actor.HasPermission(string(required)) {
		return Deny(DenyInsufficientPermission)
	}

	return Allow
}

// AuthorizeSelf decides whether actor may perform an author self-action
// (no elevated permission required) on a resource owned by ownerID.
// Admin-tier actors and actors holding a cross-author permission for the
// resource pass as well.
func AuthorizeSelf(actor *model.User, moderation Permission, ownerID int64) Decision {
	if actor == nil || !actor.IsActive {
		return Deny(DenyUnauthenticated)
	}
	if actor.ID == ownerID || actor.IsAdminTier() {
		return Allow
	}
	if actor.HasPermission(string(moderation)) && IsCrossAuthor(moderation) {
		return Allow
	}
	return Deny(DenyNotOwner)
}
