// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/oblog/internal/model"
)

const adminColumns = `id, username, email, password_hash, created_at, updated_at`

func scanAdmin(row rowScanner) (model.Admin, error) {
	var a model.Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateAdminParams holds the columns of a new admin row.
type CreateAdminParams struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const createAdmin = `INSERT INTO admins (username, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + adminColumns

// CreateAdmin inserts an admin. A taken username or email yields ErrDuplicate.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (model.Admin, error) {
	a, err := scanAdmin(q.db.QueryRowContext(ctx, createAdmin,
		arg.Username, arg.Email, arg.PasswordHash, arg.CreatedAt.UTC(), arg.UpdatedAt.UTC()))
	return a, wrapInsertError(err)
}

const getAdminByID = `SELECT ` + adminColumns + ` FROM admins WHERE id = ?`

func (q *Queries) GetAdminByID(ctx context.Context, id int64) (model.Admin, error) {
	return scanAdmin(q.db.QueryRowContext(ctx, getAdminByID, id))
}

const getAdminByEmail = `SELECT ` + adminColumns + ` FROM admins WHERE email = ?`

func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (model.Admin, error) {
	return scanAdmin(q.db.QueryRowContext(ctx, getAdminByEmail, email))
}

const getAdminByUsername = `SELECT ` + adminColumns + ` FROM admins WHERE username = ?`

func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (model.Admin, error) {
	return scanAdmin(q.db.QueryRowContext(ctx, getAdminByUsername, username))
}

const countAdmins = `SELECT COUNT(*) FROM admins`

func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAdmins).Scan(&n)
	return n, err
}

const updateAdminPassword = `UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateAdminPassword(ctx context.Context, id int64, hash string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, updateAdminPassword, hash, updatedAt.UTC(), id)
	return err
}
