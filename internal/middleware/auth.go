// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/logging"
	"github.com/olegiv/oblog/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal holds the resolved *auth.Principal.
const ContextKeyPrincipal ContextKey = "principal"

// Redirect targets used by the guards.
const (
	LoginPath = "/login"
	BlogPath  = "/blog"
)

// MsgAccessDenied is flashed when the admin guard turns a request away.
const MsgAccessDenied = "You do not have permission to access that page."

// PrincipalResolver resolves a session reference into a principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, ref string) (*auth.Principal, error)
}

// LoadPrincipal creates middleware that resolves the session's principal
// reference and stores the principal in the request context. A reference
// that no longer resolves is dropped from the session and the request
// continues as a visitor.
func LoadPrincipal(sm *scs.SessionManager, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ref := session.PrincipalRef(r.Context(), sm)
			if ref == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := resolver.Resolve(r.Context(), ref)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to resolve session principal", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if p == nil {
				session.ClearPrincipal(r.Context(), sm)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// GetPrincipal retrieves the current principal from the request context.
// Returns nil for visitors.
func GetPrincipal(r *http.Request) *auth.Principal {
	p, _ := r.Context().Value(ContextKeyPrincipal).(*auth.Principal)
	return p
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in warning logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithRequestPath(r.Context(), r.URL.Path)))
	})
}

// RequireAdmin creates middleware that only lets Admin principals through.
// Visitors are sent to the login page, Users back to the blog, both with a
// flash notice.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			if err := auth.RequireAdmin(p); err != nil {
				target := LoginPath
				attrs := []any{
					"status", http.StatusForbidden,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				}
				if p != nil {
					target = BlogPath
					attrs = append(attrs, "principal", auth.EncodeRef(p))
				}
				slog.WarnContext(r.Context(), "access denied", attrs...)

				session.SetFlash(r.Context(), sm, MsgAccessDenied, session.FlashError)
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
