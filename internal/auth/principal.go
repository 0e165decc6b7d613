// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strconv"
	"strings"

	"github.com/olegiv/oblog/internal/model"
)

// Kind discriminates the two principal variants.
type Kind uint8

// Principal kinds. The zero value is not a valid kind.
const (
	KindUser Kind = iota + 1
	KindAdmin
)

// Session reference prefixes.
const (
	refPrefixUser  = "user"
	refPrefixAdmin = "admin"
	refSeparator   = "_"
)

// String returns the session reference prefix for the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return refPrefixUser
	case KindAdmin:
		return refPrefixAdmin
	default:
		return "unknown"
	}
}

// Principal is an authenticated actor: exactly one of User or Admin is set,
// selected by Kind.
type Principal struct {
	Kind  Kind
	User  *model.User
	Admin *model.Admin
}

// NewUserPrincipal wraps a User.
func NewUserPrincipal(u model.User) *Principal {
	return &Principal{Kind: KindUser, User: &u}
}

// NewAdminPrincipal wraps an Admin.
func NewAdminPrincipal(a model.Admin) *Principal {
	return &Principal{Kind: KindAdmin, Admin: &a}
}

// ID returns the id of the wrapped record.
func (p *Principal) ID() int64 {
	switch p.Kind {
	case KindUser:
		return p.User.ID
	case KindAdmin:
		return p.Admin.ID
	}
	return 0
}

// Email returns the email of the wrapped record.
func (p *Principal) Email() string {
	switch p.Kind {
	case KindUser:
		return p.User.Email
	case KindAdmin:
		return p.Admin.Email
	}
	return ""
}

// DisplayName is the user's full name or the admin's username.
func (p *Principal) DisplayName() string {
	switch p.Kind {
	case KindUser:
		return p.User.FullName()
	case KindAdmin:
		return p.Admin.Username
	}
	return ""
}

// CredentialHash returns the stored password hash.
func (p *Principal) CredentialHash() string {
	switch p.Kind {
	case KindUser:
		return p.User.PasswordHash
	case KindAdmin:
		return p.Admin.PasswordHash
	}
	return ""
}

// Verify checks password against the principal's credential hash.
func (p *Principal) Verify(password string) bool {
	return VerifyPassword(password, p.CredentialHash())
}

// Ref is a parsed session principal reference.
type Ref struct {
	Kind Kind
	ID   int64
	// Legacy is set for bare numeric references written before the kind
	// prefix existed; Kind is zero in that case.
	Legacy bool
}

// EncodeRef produces the session reference "user_<id>" or "admin_<id>".
func EncodeRef(p *Principal) string {
	return p.Kind.String() + refSeparator + strconv.FormatInt(p.ID(), 10)
}

// ParseRef decodes a session reference without touching storage.
// It reports false for empty input, unknown prefixes and non-positive or
// non-numeric ids.
func ParseRef(ref string) (Ref, bool) {
	prefix, rest, found := strings.Cut(ref, refSeparator)
	if !found {
		id, ok := parseID(ref)
		if !ok {
			return Ref{}, false
		}
		return Ref{ID: id, Legacy: true}, true
	}

	var kind Kind
	switch prefix {
	case refPrefixUser:
		kind = KindUser
	case refPrefixAdmin:
		kind = KindAdmin
	default:
		return Ref{}, false
	}

	id, ok := parseID(rest)
	if !ok {
		return Ref{}, false
	}
	return Ref{Kind: kind, ID: id}, true
}

func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
