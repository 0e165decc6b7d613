// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/logging"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/session"
)

// fakeResolver resolves refs from a fixed table.
type fakeResolver struct {
	principals map[string]*auth.Principal
	err        error
}

func (f *fakeResolver) Resolve(_ context.Context, ref string) (*auth.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principals[ref], nil
}

var (
	testAdmin = auth.NewAdminPrincipal(model.Admin{ID: 1, Username: "alice", Email: "alice@example.com"})
	testUser  = auth.NewUserPrincipal(model.User{ID: 7, FirstName: "Uma", LastName: "Reader", Email: "uma@example.com"})
)

// withSession runs h inside a session that already holds the given principal ref.
func withSession(sm *scs.SessionManager, ref string, h http.Handler) http.Handler {
	return sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ref != "" {
			sm.Put(r.Context(), session.KeyPrincipal, ref)
		}
		h.ServeHTTP(w, r)
	}))
}

func TestGetPrincipal(t *testing.T) {
	t.Run("no principal in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if p := GetPrincipal(req); p != nil {
			t.Errorf("GetPrincipal() = %v, want nil", p)
		}
	})

	t.Run("principal in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), testAdmin))

		p := GetPrincipal(req)
		if p == nil {
			t.Fatal("GetPrincipal() = nil, want principal")
		}
		if p.Kind != auth.KindAdmin || p.ID() != 1 {
			t.Errorf("GetPrincipal() = %s %d, want admin 1", p.Kind, p.ID())
		}
	})
}

func TestLoadPrincipal(t *testing.T) {
	resolver := &fakeResolver{principals: map[string]*auth.Principal{
		"admin_1": testAdmin,
		"user_7":  testUser,
	}}

	tests := []struct {
		name     string
		ref      string
		wantKind auth.Kind
	}{
		{"visitor", "", 0},
		{"admin", "admin_1", auth.KindAdmin},
		{"user", "user_7", auth.KindUser},
		{"stale ref", "admin_99999", 0},
		{"unknown prefix", "xyz_1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := scs.New()
			var got *auth.Principal
			var refAfter string
			h := LoadPrincipal(sm, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetPrincipal(r)
				refAfter = session.PrincipalRef(r.Context(), sm)
			}))

			rr := httptest.NewRecorder()
			withSession(sm, tt.ref, h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blog", nil))

			if tt.wantKind == 0 {
				if got != nil {
					t.Errorf("principal = %v, want nil", got)
				}
				if refAfter != "" {
					t.Errorf("stale ref %q should be dropped from the session", refAfter)
				}
				return
			}
			if got == nil || got.Kind != tt.wantKind {
				t.Errorf("principal = %v, want kind %s", got, tt.wantKind)
			}
		})
	}
}

func TestLoadPrincipal_ResolverError(t *testing.T) {
	sm := scs.New()
	resolver := &fakeResolver{err: errors.New("database is locked")}

	called := false
	h := LoadPrincipal(sm, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	withSession(sm, "admin_1", h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if called {
		t.Error("next handler should not run when resolution fails")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name         string
		principal    *auth.Principal
		wantStatus   int
		wantLocation string
	}{
		{"visitor", nil, http.StatusSeeOther, LoginPath},
		{"user", testUser, http.StatusSeeOther, BlogPath},
		{"admin", testAdmin, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := scs.New()
			var flash string
			inner := RequireAdmin(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.principal != nil {
					r = r.WithContext(WithPrincipal(r.Context(), tt.principal))
				}
				inner.ServeHTTP(w, r)
				flash = sm.GetString(r.Context(), session.KeyFlash)
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/blog/list", nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if loc := rr.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
			if tt.wantStatus == http.StatusSeeOther && flash != MsgAccessDenied {
				t.Errorf("flash = %q, want %q", flash, MsgAccessDenied)
			}
		})
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logging.RequestPath(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/3", nil))

	if got != "/blog/3" {
		t.Errorf("RequestPath = %q, want %q", got, "/blog/3")
	}
}
