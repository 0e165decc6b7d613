// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/model"
)

// Default admin identity
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
)

// SeedOptions configures the initial admin account.
type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.AdminUsername == "" {
		o.AdminUsername = DefaultAdminUsername
	}
	if o.AdminEmail == "" {
		o.AdminEmail = DefaultAdminEmail
	}
	if o.AdminPassword == "" {
		o.AdminPassword = DefaultAdminPassword
	}
	o.AdminEmail = model.NormalizeEmail(o.AdminEmail)
	return o
}

// Seed creates the initial admin account if no admin exists yet.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	opts = opts.withDefaults()
	queries := New(db)

	count, err := queries.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		slog.Info("admin account already exists, skipping seed")
		return nil
	}

	_, err = queries.GetAdminByEmail(ctx, opts.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin: %w", err)
	}

	passwordHash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	admin, err := queries.CreateAdmin(ctx, CreateAdminParams{
		Username:     opts.AdminUsername,
		Email:        opts.AdminEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	attrs := []any{"id", admin.ID, "username", admin.Username, "email", admin.Email}
	if opts.AdminPassword == DefaultAdminPassword {
		slog.Warn("created default admin with the default password, change it", attrs...)
	} else {
		slog.Info("created default admin", attrs...)
	}

	return nil
}
