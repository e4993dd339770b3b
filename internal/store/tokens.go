// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

const tokenColumns = `id, user_id, name, token_hash, prefix, last_used_at,
	expires_at, is_active, created_at`

func scanToken(row interface{ Scan(...any) error }) (model.APIToken, error) {
	var t model.APIToken
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.TokenHash, &t.Prefix,
		&t.LastUsedAt, &t.ExpiresAt, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return model.APIToken{}, err
	}
	return t, nil
}

// CreateTokenParams holds the fields for creating an API token.
type CreateTokenParams struct {
	UserID    int64
	Name      string
	TokenHash string
	Prefix    string
	ExpiresAt sql.NullTime
}

// CreateToken inserts a new API token record.
func (q *Queries) CreateToken(ctx context.Context, p CreateTokenParams) (model.APIToken, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO api_tokens (user_id, name, token_hash, prefix, expires_at, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		p.UserID, p.Name, p.TokenHash, p.Prefix, p.ExpiresAt, time.Now().UTC())
	if err != nil {
		return model.APIToken{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.APIToken{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM api_tokens WHERE id = ?`, id)
	return scanToken(row)
}

// GetTokenByHash fetches a token by its SHA-256 hash.
func (q *Queries) GetTokenByHash(ctx context.Context, hash string) (model.APIToken, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens WHERE token_hash = ?`, hash)
	return scanToken(row)
}

// ListTokensForUser returns a user's API tokens, newest first.
func (q *Queries) ListTokensForUser(ctx context.Context, userID int64) ([]model.APIToken, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+tokenColumns+` FROM api_tokens
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.APIToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// UpdateTokenLastUsed records token use.
func (q *Queries) UpdateTokenLastUsed(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE api_tokens SET last_used_at = ? WHERE id = ?`, at, id)
	return err
}

// RevokeToken deactivates a token.
func (q *Queries) RevokeToken(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE api_tokens SET is_active = 0 WHERE id = ?`, id)
	return err
}

// RevokeUserToken deactivates an active token owned by userID. Returns
// the number of rows written; zero means the user owns no such active
// token.
func (q *Queries) RevokeUserToken(ctx context.Context, id, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE api_tokens SET is_active = 0 WHERE id = ? AND user_id = ? AND is_active = 1`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
