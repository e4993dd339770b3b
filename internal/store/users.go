// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

const userColumns = `id, email, password_hash, name, role, permissions,
	is_active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role,
		&u.Permissions, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.NormalizeRole(role)
	return u, nil
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	Role         model.Role
	Permissions  string
	IsActive     bool
}

// CreateUser inserts a new admin user and returns it.
func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (model.User, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, role, permissions, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Email, p.PasswordHash, p.Name, string(p.Role), p.Permissions, p.IsActive, now, now)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersParams controls user list pagination.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns users ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context, p ListUsersParams) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// UpdateUserParams holds the mutable profile fields of a user.
type UpdateUserParams struct {
	ID    int64
	Email string
	Name  string
}

// UpdateUser updates a user's profile fields.
func (q *Queries) UpdateUser(ctx context.Context, p UpdateUserParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET email = ?, name = ?, updated_at = ? WHERE id = ?`,
		p.Email, p.Name, time.Now().UTC(), p.ID)
	return err
}

// UpdateUserRoleParams holds a role change together with the reseeded
// permission set.
type UpdateUserRoleParams struct {
	ID          int64
	Role        model.Role
	Permissions string
}

// UpdateUserRole changes a user's role and replaces the permission set.
func (q *Queries) UpdateUserRole(ctx context.Context, p UpdateUserRoleParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET role = ?, permissions = ?, updated_at = ? WHERE id = ?`,
		string(p.Role), p.Permissions, time.Now().UTC(), p.ID)
	return err
}

// UpdateUserPermissions replaces a user's permission set.
func (q *Queries) UpdateUserPermissions(ctx context.Context, id int64, permissions string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET permissions = ?, updated_at = ? WHERE id = ?`,
		permissions, time.Now().UTC(), id)
	return err
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}

// SetUserActive enables or disables a user. Disabling is the soft-delete
// path; rows are only removed when no audit activity references them.
func (q *Queries) SetUserActive(ctx context.Context, id int64, active bool) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id)
	return err
}

// UpdateUserLastLogin records a successful credential resolution.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

// DeleteUser removes a user row. Callers must verify the user has no
// referential activity first; see CountEventsForUser.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ErrNoRows re-exports sql.ErrNoRows for callers that don't import
// database/sql directly.
var ErrNoRows = sql.ErrNoRows
