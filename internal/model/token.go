// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// APIToken represents a bearer token granting API access as a user.
type APIToken struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	Name       string       `json:"name"`
	TokenHash  string       `json:"-"` // Never expose hash in JSON
	Prefix     string       `json:"prefix"`
	LastUsedAt sql.NullTime `json:"last_used_at,omitempty"`
	ExpiresAt  sql.NullTime `json:"expires_at,omitempty"`
	IsActive   bool         `json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
}

// GenerateToken generates a new random bearer token.
// Returns the raw token (shown to the user once) and its prefix.
func GenerateToken() (rawToken string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	rawToken = base64.URLEncoding.EncodeToString(bytes)
	prefix = rawToken[:8]

	return rawToken, prefix, nil
}

// HashToken creates a SHA-256 hash of a bearer token for storage.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// IsExpired checks if the token has expired.
func (t *APIToken) IsExpired() bool {
	if !t.ExpiresAt.Valid {
		return false
	}
	return time.Now().After(t.ExpiresAt.Time)
}

// IsValid checks if the token is active and not expired.
func (t *APIToken) IsValid() bool {
	return t.IsActive && !t.IsExpired()
}
