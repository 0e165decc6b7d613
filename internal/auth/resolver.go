// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/oblog/internal/model"
)

// PrincipalStore looks up both principal variants. Lookups that find
// nothing return sql.ErrNoRows.
type PrincipalStore interface {
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetAdminByID(ctx context.Context, id int64) (model.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (model.Admin, error)
}

// Resolver turns credentials and session references into principals.
type Resolver struct {
	store PrincipalStore
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store PrincipalStore) *Resolver {
	return &Resolver{store: store}
}

// Authenticate returns the principal whose email and password match.
// Users are checked before Admins, so when both tables hold the email and
// both passwords verify, the User wins. A nil principal with a nil error
// means the credentials did not match.
func (r *Resolver) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	user, err := r.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if p := NewUserPrincipal(user); p.Verify(password) {
			return p, nil
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	admin, err := r.store.GetAdminByEmail(ctx, email)
	switch {
	case err == nil:
		if p := NewAdminPrincipal(admin); p.Verify(password) {
			return p, nil
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("looking up admin: %w", err)
	}

	return nil, nil
}

// Resolve loads the principal named by a session reference. It fails closed:
// malformed references and missing records yield a nil principal and a nil
// error. Bare numeric references are tried as a User first, then an Admin.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Principal, error) {
	parsed, ok := ParseRef(ref)
	if !ok {
		if ref != "" {
			slog.Debug("rejected malformed session reference", "ref", ref)
		}
		return nil, nil
	}

	if parsed.Legacy {
		p, err := r.lookup(ctx, KindUser, parsed.ID)
		if p != nil || err != nil {
			return p, err
		}
		return r.lookup(ctx, KindAdmin, parsed.ID)
	}

	return r.lookup(ctx, parsed.Kind, parsed.ID)
}

func (r *Resolver) lookup(ctx context.Context, kind Kind, id int64) (*Principal, error) {
	var (
		p   *Principal
		err error
	)
	switch kind {
	case KindUser:
		var u model.User
		if u, err = r.store.GetUserByID(ctx, id); err == nil {
			p = NewUserPrincipal(u)
		}
	case KindAdmin:
		var a model.Admin
		if a, err = r.store.GetAdminByID(ctx, id); err == nil {
			p = NewAdminPrincipal(a)
		}
	default:
		return nil, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s %d: %w", kind, id, err)
	}
	return p, nil
}
